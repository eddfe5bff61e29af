package constants_test

import (
	"fmt"
	"net/http"

	"github.com/agentstation/catalogbridge/pkg/constants"
)

// Example_timeouts demonstrates timeout constants
func Example_timeouts() {
	client := &http.Client{
		Timeout: constants.DefaultHTTPTimeout,
	}

	fmt.Printf("HTTP timeout: %v\n", client.Timeout)
	fmt.Printf("Retries: %d\n", constants.MaxRetries)
	// Output:
	// HTTP timeout: 30s
	// Retries: 3
}

// Example_token shows how the effective token lifetime is derived.
func Example_token() {
	effective := constants.DefaultTokenLifetime - constants.TokenExpiryMargin
	fmt.Println(effective)
	// Output: 59m0s
}
