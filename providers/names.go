package providers

const (
	// Identifier for ip-api.com provider.
	NameIPAPI = "ipapi"

	// Identifier for ipinfo.io provider.
	NameIPInfo = "ipinfo"

	// Identifier for ipstack.com provider.
	NameIPStack = "ipstack"

	// Identifier for tools.keycdn.com provider.
	NameKeyCDN = "keycdn"

	// Identifier for ip2c.org provider.
	NameIP2C = "ip2c"

	// Identifier for local MaxMind databases.
	NameMaxmind = "maxmind"
)
