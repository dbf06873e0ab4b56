package observability

// Config captures opt-in observability toggles that wire into the server.
type Config struct {
	EnablePprof  bool
	OTelEnabled  bool
	OTelEndpoint string
}

// TracingEnabled reports whether spans should be exported.
func (c Config) TracingEnabled() bool {
	return c.OTelEnabled && c.OTelEndpoint != ""
}
