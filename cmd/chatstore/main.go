package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/rohits-web03/marketchat/internal/chat"
	"github.com/rohits-web03/marketchat/internal/config"
	"github.com/rohits-web03/marketchat/internal/envelope"
	"github.com/rohits-web03/marketchat/internal/kiosk"
	"github.com/rohits-web03/marketchat/internal/repositories"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg := config.Load(log)
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.Warnf("Unknown LOG_LEVEL %q, keeping %s", cfg.LogLevel, log.GetLevel())
	}

	mode := "Production"
	if cfg.Kiosk {
		mode = "Demonstration"
	}
	log.Infof("Starting in %s mode (%s)", mode, cfg.Environment)

	// The key is derived once and shared read-only for the process lifetime.
	password, salt, err := cfg.Secret()
	if err != nil {
		log.Fatalf("Could not load encryption secret: %v", err)
	}
	suite, err := envelope.NewSuiteFromSecret(password, salt)
	if err != nil {
		log.Fatalf("Could not derive encryption key: %v", err)
	}

	store, err := repositories.Open(cfg.DB, suite, log)
	if err != nil {
		log.Fatalf("Could not open store: %v", err)
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Kiosk {
		sum, err := kiosk.Populate(ctx, store)
		if err != nil {
			log.Fatalf("Could not seed demonstration data: %v", err)
		}
		log.WithFields(logrus.Fields{
			"users":         sum.Users,
			"products":      sum.Products,
			"conversations": sum.Conversations,
			"messages":      sum.Messages,
		}).Info("Seeded demonstration data")

		svc := chat.NewService(store, log)
		alice, err := store.GetUserIDByUsername(ctx, "alice")
		if err != nil {
			log.Fatalf("Demo user missing: %v", err)
		}
		inbox, err := svc.Inbox(ctx, alice)
		if err != nil {
			log.Fatalf("Could not read demo inbox: %v", err)
		}
		for _, t := range inbox {
			entry := log.WithFields(logrus.Fields{
				"conversation": t.Conversation,
				"peer":         t.Peer.Username,
				"product":      t.Product.Name,
			})
			if t.Latest != nil {
				entry = entry.WithField("latest", t.Latest.Text)
			}
			entry.Info("Inbox")
		}
	}

	log.Info("Message store ready")
}
