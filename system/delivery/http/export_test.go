package http

var (
	ExtractVersion       = extractVersion
	RedactConfig         = redactConfig
	VersionFromBuildInfo = versionFromBuildInfo
)
