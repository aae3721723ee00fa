package config

import "time"

// GatewayConfig holds the payment gateway credentials.  KeyID doubles as
// the public key handed to clients to open the checkout widget, KeySecret
// signs payment callbacks.  Empty credentials are allowed at startup so the
// rest of the API keeps serving; order creation then fails as misconfigured.
type GatewayConfig struct {
    BaseURL   string
    KeyID     string
    KeySecret string
    Currency  string
    Timeout   time.Duration
}

// LoadGatewayConfig reads GATEWAY_* variables.
func LoadGatewayConfig() GatewayConfig {
    return GatewayConfig{
        BaseURL:   envStr("GATEWAY_BASE_URL", "https://api.razorpay.com"),
        KeyID:     envStr("GATEWAY_KEY_ID", ""),
        KeySecret: envStr("GATEWAY_KEY_SECRET", ""),
        Currency:  envStr("GATEWAY_CURRENCY", "INR"),
        Timeout:   envDur("GATEWAY_TIMEOUT", 10*time.Second),
    }
}
