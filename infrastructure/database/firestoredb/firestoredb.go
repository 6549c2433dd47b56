package firestoredb

import (
	"context"
	"os"

	"cloud.google.com/go/firestore"
	"github.com/vfg2006/subscription-manager-api/internal/config"
	"google.golang.org/api/option"
)

// Nomes das coleções consumidas pelo núcleo
const (
	CollectionCategories      = "categories"
	CollectionServices        = "services"
	CollectionSales           = "sales"
	CollectionServicePayments = "service_payments"
	CollectionSalePayments    = "sale_payments"
	CollectionNotifications   = "notifications"
)

// Connection encapsula o cliente do Firestore usado pelos repositórios
type Connection struct {
	client *firestore.Client
}

func NewConnection(
	ctx context.Context,
	cfg config.Firestore,
) (*Connection, error) {
	if cfg.EmulatorHost != "" {
		// O cliente oficial lê o host do emulador desta variável de ambiente
		os.Setenv("FIRESTORE_EMULATOR_HOST", cfg.EmulatorHost)
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := firestore.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, err
	}

	return &Connection{client: client}, nil
}

func (c *Connection) Close() error {
	return c.client.Close()
}
