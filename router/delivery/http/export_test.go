package http

import (
	"github.com/baseswapfi/sor/domain"
	"github.com/baseswapfi/sor/log"
	"github.com/baseswapfi/sor/router/types"
)

func (a *RouterHandler) RoutingConfig(req *types.GetQuoteRequest) (domain.RoutingConfig, error) {
	return a.routingConfig(req)
}

func SetLogger(a *RouterHandler, logger log.Logger) {
	a.logger = logger
}
