package repositories

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rohits-web03/marketchat/internal/models"
)

func (s *GormStore) UpsertUser(ctx context.Context, profile models.User) (models.UserID, error) {
	const op = "UpsertUser"
	if profile.Username == "" {
		return 0, fail(op, KindInvalidArgument, "", 0, errors.New("empty username"))
	}

	var id models.UserID
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.User
		err := tx.Where("username = ?", profile.Username).Take(&existing).Error
		if err == nil {
			id = existing.ID
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		// A concurrent insert of the same username hits the unique index;
		// the row already there wins and is re-read below.
		row := models.User{Username: profile.Username, Name: profile.Name}
		err = tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "username"}},
			DoNothing: true,
		}).Create(&row).Error
		if err != nil {
			return err
		}

		if err := tx.Where("username = ?", profile.Username).Take(&existing).Error; err != nil {
			return err
		}
		id = existing.ID
		return nil
	})
	if err != nil {
		return 0, dbErr(op, "user", 0, err)
	}
	return id, nil
}

func (s *GormStore) GetUserIDByUsername(ctx context.Context, username string) (models.UserID, error) {
	var u models.User
	err := s.db.WithContext(ctx).Select("id").Where("username = ?", username).Take(&u).Error
	if err != nil {
		return 0, dbErr("GetUserIDByUsername", "user", 0, err)
	}
	return u.ID, nil
}

func (s *GormStore) GetUserProfile(ctx context.Context, id models.UserID) (models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).Take(&u).Error; err != nil {
		return models.User{}, dbErr("GetUserProfile", "user", int64(id), err)
	}
	return u, nil
}
