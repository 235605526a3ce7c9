package esewa

import "fmt"

// Environment selects which eSewa deployment the client talks to.
type Environment string

const (
	EnvironmentTest       Environment = "test"
	EnvironmentProduction Environment = "production"
)

var baseURLs = map[Environment]string{
	EnvironmentTest:       "https://uat.esewa.com.np",
	EnvironmentProduction: "https://esewa.com.np",
}

// BaseURL returns the gateway host for the environment.
func (e Environment) BaseURL() (string, error) {
	u, ok := baseURLs[e]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownEnvironment, string(e))
	}
	return u, nil
}

func (e Environment) String() string { return string(e) }
