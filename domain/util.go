package domain

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// ParseBooleanQueryParam parses a boolean query parameter.
// Returns false if the parameter is not present.
// Errors if the value is not a valid boolean.
func ParseBooleanQueryParam(c echo.Context, paramName string) (paramValue bool, err error) {
	paramValueStr := c.QueryParam(paramName)
	if paramValueStr != "" {
		paramValue, err = strconv.ParseBool(paramValueStr)
		if err != nil {
			return false, err
		}
	}

	return paramValue, nil
}

// ParseIntQueryParam parses an optional integer query parameter, returning defaultValue when absent.
func ParseIntQueryParam(c echo.Context, paramName string, defaultValue int) (int, error) {
	paramValueStr := c.QueryParam(paramName)
	if paramValueStr == "" {
		return defaultValue, nil
	}
	return strconv.Atoi(paramValueStr)
}

// ParseProtocols parses a comma-separated list of protocols.
func ParseProtocols(protocolsParam string) ([]Protocol, error) {
	var protocols []Protocol
	for _, s := range splitAndTrim(protocolsParam, ",") {
		p, err := ParseProtocol(s)
		if err != nil {
			return nil, err
		}
		protocols = append(protocols, p)
	}
	return protocols, nil
}

// splitAndTrim splits a string by a separator and trims the resulting strings.
func splitAndTrim(s, sep string) []string {
	var result []string
	for _, val := range strings.Split(s, sep) {
		trimmed := strings.TrimSpace(val)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
