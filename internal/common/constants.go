package common

// Popular trading pairs offered as quick picks by the client surface
const (
	ETHUSDPair   = "ETH/USD"
	BTCUSDPair   = "BTC/USD"
	SOLUSDPair   = "SOL/USD"
	MATICUSDPair = "MATIC/USD"
)

// Environment variable keys
const (
	EnvAdvisoryURL    = "ADVISORY_URL"
	EnvAdvisoryAPIKey = "ADVISORY_API_KEY"
	EnvNotifyURL      = "NOTIFY_URL"
	EnvDataPath       = "DATA_PATH"
	EnvListenPort     = "LISTEN_PORT"
	EnvRESTTimeout    = "REST_TIMEOUT"
	EnvDefaultPair    = "DEFAULT_PAIR"
)

// Configuration defaults
const (
	DefaultListenPort = 8080
	DefaultPair       = ETHUSDPair
)

// Trading parameter defaults, also used as per-field fallbacks when a
// persisted field is missing or unreadable
const (
	DefaultAccountBalance = 10000.0
	DefaultRiskPercentage = 2.0
	DefaultEntryPrice     = 0.0
	DefaultStopLossPrice  = 0.0
)

// Risk percentage bounds, mirroring the input slider on the client
const (
	RiskPercentMin = 0.5
	RiskPercentMax = 10.0
)

// Conservative advisory fallbacks used when the external service
// returns an unusable payload
const (
	FallbackStopLossLevel   = 0.05
	FallbackRiskReward      = 2.0
	FallbackReasoning       = "Conservative risk management approach with standard 5% stop loss and 1:2 risk-reward ratio suitable for current market conditions."
	FallbackVolatility      = "Moderate volatility expected based on historical patterns."
	FallbackConfidenceScore = 50.0
)

// Validation constants
const (
	MinListenPort = 1024
	MaxListenPort = 65535
)
