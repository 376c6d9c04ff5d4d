package app

import (
	"context"

	"github.com/citizenwallet/govdash/internal/config"
	"github.com/citizenwallet/govdash/internal/gateway"
	"github.com/citizenwallet/govdash/internal/metrics"
	"github.com/citizenwallet/govdash/internal/proposals"
	"github.com/citizenwallet/govdash/internal/services/ethrequest"
	"github.com/citizenwallet/govdash/internal/services/webhook"
	"github.com/citizenwallet/govdash/internal/wallet"
	"github.com/citizenwallet/govdash/pkg/contracts"
	"github.com/citizenwallet/govdash/pkg/governance"
	"github.com/citizenwallet/govdash/pkg/queue"
	"go.uber.org/zap"
)

// FromConfig connects to the rpc endpoint and assembles an App from conf.
// The returned func closes the App, the notification queue and the rpc connection.
func FromConfig(ctx context.Context, conf *config.Config, logger *zap.Logger, m *metrics.Metrics) (*App, func(), error) {
	addrs, err := conf.Addresses()
	if err != nil {
		return nil, nil, err
	}

	roles, err := conf.Roles()
	if err != nil {
		return nil, nil, err
	}

	provider, err := wallet.NewProvider(conf.WalletPrivateKey, conf.WalletKeystoreDir, conf.WalletAccount)
	if err != nil {
		return nil, nil, err
	}
	if provider == nil {
		logger.Warn("no wallet configured, running read-only")
	}

	logger.Info("connecting to rpc...", zap.String("url", conf.RPCURL))

	var evm governance.EVMRequester
	evm, err = ethrequest.NewEthService(ctx, conf.RPCURL)
	if err != nil {
		return nil, nil, err
	}

	chid, err := evm.ChainID(ctx)
	if err != nil {
		evm.Close()
		return nil, nil, err
	}

	logger.Info("running for chain", zap.String("chain", conf.ChainName), zap.String("chain_id", chid.String()))

	gw, err := gateway.New(evm.Backend(), *addrs)
	if err != nil {
		evm.Close()
		return nil, nil, err
	}

	connector := wallet.NewConnector(provider, chid)

	notifications := queue.NewService("webhook", 3, 64, logger)
	go func() {
		if err := notifications.Start(queue.Deliver(webhook.NewMessager(conf.DiscordURL, conf.ChainName, conf.DiscordURL != ""))); err != nil {
			logger.Error("notification queue stopped", zap.Error(err))
		}
	}()

	a := New(Options{
		Connector: connector,
		Binder:    NewGatewayBinder(connector, gw),
		Confirmer: evm,
		Readers:   ReadersFromGateway(gw),
		Lister:    proposals.NewLister(conf.GovernorStartBlock, conf.LogRange, conf.StateWorkers, logger, m),
		AdminRole: roles[contracts.RoleAdmin],
		Notifier:  queue.NewNotifier(notifications),
		Logger:    logger,
		Metrics:   m,
	})

	return a, func() {
		a.Close()
		notifications.Close()
		evm.Close()
	}, nil
}
