package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/blockchaincommons/go-depo/internal/account"
	"github.com/blockchaincommons/go-depo/internal/pipeline"
	"github.com/blockchaincommons/go-depo/internal/store"
	"github.com/blockchaincommons/go-depo/internal/store/memstore"
	"github.com/blockchaincommons/go-depo/internal/store/pgstore"
	"github.com/blockchaincommons/go-depo/pkg/config"
	"github.com/blockchaincommons/go-depo/pkg/depocrypto"
	"github.com/blockchaincommons/go-depo/pkg/envelope"
	"github.com/blockchaincommons/go-depo/pkg/mlog"
)

func main() {
	ctx := context.Background()

	cfg, err := config.FromEnv()
	if err != nil {
		panic(err)
	}

	logger, err := mlog.NewZapLogger()
	if err != nil {
		panic(err)
	}

	defer func() {
		if err := logger.Sync(); err != nil {
			logger.Errorf("depod: failed to sync logger: %s", err)
		}
	}()

	s, resetter, err := buildStore(ctx, cfg, logger)
	if err != nil {
		logger.Errorf("depod: failed to build store: %s", err)
		panic(err)
	}

	settings, err := s.Settings(ctx)
	if err != nil {
		logger.Errorf("depod: failed to load settings: %s", err)
		panic(err)
	}

	svc := account.New(s, envelope.ContinuationCodec{}, logger)
	p := pipeline.New(svc, settings.PrivateKey, settings.PublicKey, logger)

	app := newRouter(p, settings.PublicKey, resetter, logger)

	logger.Infof("depod: listening on %s, store=%s, depository key=%s",
		cfg.ServerAddress, cfg.StoreKind, depocrypto.EncodeText("pubkey", settings.PublicKey.Bytes()))

	if err := app.Listen(cfg.ServerAddress); err != nil {
		logger.Errorf("depod: server exited: %s", err)
		panic(err)
	}
}

// buildStore constructs the configured store.Store implementation and, for
// backends that support it, a reset function for the administrative
// /reset-db route.
func buildStore(ctx context.Context, cfg *config.Config, logger mlog.Logger) (store.Store, func(context.Context) error, error) {
	switch cfg.StoreKind {
	case "memory":
		pub, priv, err := depocrypto.GenerateKeypair()
		if err != nil {
			return nil, nil, fmt.Errorf("depod: generate in-memory depository keypair: %w", err)
		}

		settings := store.Settings{
			PrivateKey:                priv,
			PublicKey:                 pub,
			ContinuationExpirySeconds: int64(cfg.ContinuationExpirySeconds),
			MaxPayloadSize:            cfg.MaxPayloadSize,
		}

		s := memstore.New(settings)

		return s, nil, nil

	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("depod: connect to postgres: %w", err)
		}

		s, err := pgstore.New(ctx, pool,
			pgstore.WithLogger(logger),
			pgstore.WithDefaults(cfg.MaxPayloadSize, int64(cfg.ContinuationExpirySeconds)),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("depod: initialize postgres store: %w", err)
		}

		reset := func(ctx context.Context) error {
			return s.ResetSchema(ctx)
		}

		return s, reset, nil

	default:
		return nil, nil, fmt.Errorf("depod: unknown DEPO_STORE_KIND %q", cfg.StoreKind)
	}
}
