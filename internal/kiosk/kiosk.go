// Package kiosk seeds the demonstration dataset used in kiosk mode.
package kiosk

import (
	"context"

	"github.com/pkg/errors"

	"github.com/rohits-web03/marketchat/internal/models"
	"github.com/rohits-web03/marketchat/internal/repositories"
)

var users = []models.User{
	{Username: "alice", Name: "Alice Arnold"},
	{Username: "bob", Name: "Bob Bellows"},
	{Username: "carol", Name: "Carol Carter"},
}

type listing struct {
	externalID int64
	name       string
	seller     string
}

var listings = []listing{
	{externalID: 100, name: "Vintage road bicycle", seller: "bob"},
	{externalID: 101, name: "Cycling helmet", seller: "bob"},
	{externalID: 200, name: "Espresso machine", seller: "carol"},
}

type line struct {
	from, text string
}

type thread struct {
	buyer, seller string
	product       int64
	lines         []line
}

var threads = []thread{
	{buyer: "alice", seller: "bob", product: 100, lines: []line{
		{"alice", "Hello Bob!"},
		{"bob", "Hi Alice!"},
		{"alice", "Is the bicycle still available?"},
		{"bob", "It is. Want to see it this weekend?"},
	}},
	{buyer: "alice", seller: "carol", product: 200, lines: []line{
		{"alice", "Does the espresso machine come with a grinder?"},
	}},
}

// Summary counts what Populate wrote.
type Summary struct {
	Users, Products, Conversations, Messages int
}

// Populate writes the demonstration dataset. Users, products and
// conversations are upserts; messages are only added to conversations that
// are still empty, so running it twice does not duplicate them.
func Populate(ctx context.Context, store repositories.Store) (Summary, error) {
	var sum Summary
	ids := make(map[string]models.UserID, len(users))
	for _, u := range users {
		id, err := store.UpsertUser(ctx, u)
		if err != nil {
			return sum, errors.Wrapf(err, "kiosk: user %s", u.Username)
		}
		ids[u.Username] = id
		sum.Users++
	}

	products := make(map[int64]models.ProductID, len(listings))
	for _, l := range listings {
		id, err := store.UpsertProduct(ctx, models.Product{ExternalID: l.externalID, Name: l.name, SellerID: ids[l.seller]})
		if err != nil {
			return sum, errors.Wrapf(err, "kiosk: product %d", l.externalID)
		}
		products[l.externalID] = id
		sum.Products++
	}

	for _, th := range threads {
		convo, err := store.StartConversation(ctx, ids[th.buyer], ids[th.seller], products[th.product])
		if err != nil {
			return sum, errors.Wrap(err, "kiosk: conversation")
		}
		sum.Conversations++

		latest, err := store.GetLatestMessage(ctx, convo)
		if err != nil {
			return sum, errors.Wrap(err, "kiosk: latest message")
		}
		if latest != nil {
			continue
		}
		for _, l := range th.lines {
			if _, err := store.PostMessage(ctx, models.MessageText(l.text), ids[l.from], convo); err != nil {
				return sum, errors.Wrap(err, "kiosk: message")
			}
			sum.Messages++
		}
	}
	return sum, nil
}
