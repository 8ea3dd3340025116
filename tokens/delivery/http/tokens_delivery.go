package http

import (
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/labstack/echo/v4"

	"github.com/baseswapfi/sor/domain"
	"github.com/baseswapfi/sor/domain/mvc"
	"github.com/baseswapfi/sor/log"
)

// TokensHandler represent the httphandler for token metadata
type TokensHandler struct {
	TProvider mvc.TokenProvider
	logger    log.Logger
}

const tokensResource = "/tokens"

func formatTokensResource(resource string) string {
	return tokensResource + resource
}

// NewTokensHandler will initialize the tokens/ resources endpoint
func NewTokensHandler(e *echo.Echo, tp mvc.TokenProvider, logger log.Logger) {
	handler := &TokensHandler{
		TProvider: tp,
		logger:    logger,
	}
	e.GET(formatTokensResource("/metadata"), handler.GetMetadata)
}

// GetMetadata returns the metadata of the comma separated addresses keyed by lowercased address.
// Addresses that do not resolve to a token are omitted.
func (a *TokensHandler) GetMetadata(c echo.Context) error {
	ctx := c.Request().Context()

	addressesStr := c.QueryParam("addresses")
	if len(addressesStr) == 0 {
		return c.JSON(http.StatusBadRequest, domain.ResponseError{Message: "addresses parameter is required"})
	}

	parts := strings.Split(addressesStr, ",")
	addresses := make([]common.Address, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if !common.IsHexAddress(part) {
			return c.JSON(http.StatusBadRequest, domain.ResponseError{Message: domain.InvalidTokenError{Address: part}.Error()})
		}
		addresses = append(addresses, common.HexToAddress(part))
	}

	accessor, err := a.TProvider.GetTokens(ctx, addresses, nil)
	if err != nil {
		return c.JSON(domain.GetStatusCode(err), domain.ResponseError{Message: err.Error()})
	}

	result := make(map[string]domain.Token, len(addresses))
	for _, token := range accessor.GetAllTokens() {
		result[token.Key()] = token
	}

	return c.JSON(http.StatusOK, result)
}
