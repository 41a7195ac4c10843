package service_test

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/self-checkout/internal/repository/repotest"
	"github.com/tuanvumaihuynh/self-checkout/internal/service"
	"github.com/tuanvumaihuynh/self-checkout/pkg/validator"
	"github.com/tuanvumaihuynh/self-checkout/pkg/zerror"
)

var discardLogger = slog.New(slog.DiscardHandler)

func newCatalogService(store *repotest.Store) service.CatalogService {
	return service.NewCatalogService(discardLogger, store.DB(), validator.MustNewDefaultValidator(), store.Products(), store.OutboxMsgs())
}

func newBillingService(store *repotest.Store) service.BillingService {
	return service.NewBillingService(discardLogger, store.DB(), validator.MustNewDefaultValidator(), store.Products(), store.OutboxMsgs())
}

func requireCode(t *testing.T, err error, code string) zerror.ZError {
	t.Helper()
	var zErr zerror.ZError
	require.ErrorAs(t, err, &zErr)
	require.Equal(t, code, zErr.Code())
	return zErr
}
