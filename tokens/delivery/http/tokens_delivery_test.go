package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/baseswapfi/sor/domain"
	"github.com/baseswapfi/sor/domain/mocks"
	"github.com/baseswapfi/sor/log"
	tokenshttpdelivery "github.com/baseswapfi/sor/tokens/delivery/http"
)

func TestGetMetadata(t *testing.T) {
	testCases := []struct {
		name           string
		query          string
		expectedStatus int
		expectedKeys   []string
	}{
		{
			name:           "resolves known tokens",
			query:          "?addresses=" + domain.WETHBase.Address.Hex() + ",0x0000000000000000000000000000000000000abc",
			expectedStatus: http.StatusOK,
			expectedKeys:   []string{domain.WETHBase.Key()},
		},
		{
			name:           "missing parameter",
			query:          "",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid address",
			query:          "?addresses=weth",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			tokenshttpdelivery.NewTokensHandler(e, mocks.WithTokens(domain.WETHBase), &log.NoOpLogger{})

			req := httptest.NewRequest(http.MethodGet, "/tokens/metadata"+tc.query, nil)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			require.Equal(t, tc.expectedStatus, rec.Code)
			if tc.expectedStatus != http.StatusOK {
				return
			}

			var result map[string]domain.Token
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
			require.Len(t, result, len(tc.expectedKeys))
			for _, key := range tc.expectedKeys {
				require.Contains(t, result, key)
			}
		})
	}
}
