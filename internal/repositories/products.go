package repositories

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rohits-web03/marketchat/internal/models"
)

func (s *GormStore) UpsertProduct(ctx context.Context, p models.Product) (models.ProductID, error) {
	const op = "UpsertProduct"

	var id models.ProductID
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := models.Product{ExternalID: p.ExternalID, Name: p.Name, SellerID: p.SellerID}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "external_catalog_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "seller_id", "updated_at"}),
		}).Create(&row).Error
		if err != nil {
			return err
		}

		var stored models.Product
		if err := tx.Select("id").Where("external_catalog_id = ?", p.ExternalID).Take(&stored).Error; err != nil {
			return err
		}
		id = stored.ID
		return nil
	})
	if err != nil {
		return 0, dbErr(op, "product", p.ExternalID, err)
	}
	return id, nil
}

func (s *GormStore) ClaimProduct(ctx context.Context, p models.Product) (models.ProductID, error) {
	const op = "ClaimProduct"

	var id models.ProductID
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The update only applies to the listing's current seller; anyone
		// else leaves the row untouched and is refused after the re-read.
		row := models.Product{ExternalID: p.ExternalID, Name: p.Name, SellerID: p.SellerID}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "external_catalog_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "updated_at"}),
			Where: clause.Where{Exprs: []clause.Expression{
				clause.Expr{SQL: "products.seller_id = excluded.seller_id"},
			}},
		}).Create(&row).Error
		if err != nil {
			return err
		}

		var stored models.Product
		if err := tx.Select("id", "seller_id").Where("external_catalog_id = ?", p.ExternalID).Take(&stored).Error; err != nil {
			return err
		}
		if stored.SellerID != p.SellerID {
			return fail(op, KindPermissionDenied, "product", p.ExternalID, nil)
		}
		id = stored.ID
		return nil
	})
	if err != nil {
		return 0, dbErr(op, "product", p.ExternalID, err)
	}
	return id, nil
}

func (s *GormStore) GetProduct(ctx context.Context, id models.ProductID) (models.Product, error) {
	var p models.Product
	if err := s.db.WithContext(ctx).Where("id = ?", id).Take(&p).Error; err != nil {
		return models.Product{}, dbErr("GetProduct", "product", int64(id), err)
	}
	return p, nil
}

func (s *GormStore) GetProductByExternalID(ctx context.Context, externalID int64) (models.Product, error) {
	var p models.Product
	if err := s.db.WithContext(ctx).Where("external_catalog_id = ?", externalID).Take(&p).Error; err != nil {
		return models.Product{}, dbErr("GetProductByExternalID", "product", externalID, err)
	}
	return p, nil
}

func (s *GormStore) GetProductFromConversation(ctx context.Context, conversation models.ConversationID) (models.ProductID, error) {
	var c models.Conversation
	err := s.db.WithContext(ctx).Select("product_id").Where("id = ?", conversation).Take(&c).Error
	if err != nil {
		return 0, dbErr("GetProductFromConversation", "conversation", int64(conversation), err)
	}
	return c.ProductID, nil
}

func (s *GormStore) BelongsToSeller(ctx context.Context, user models.UserID, product models.ProductID) error {
	const op = "BelongsToSeller"
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND seller_id = ?", product, user).
		Count(&n).Error
	if err != nil {
		return dbErr(op, "product", int64(product), err)
	}
	if n == 0 {
		return fail(op, KindPermissionDenied, "product", int64(product), nil)
	}
	return nil
}
