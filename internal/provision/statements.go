package provision

import (
	"fmt"

	"github.com/couchcryptid/geocode-proxy-service/internal/domain"
)

// functionBaseName is shared by every external function; the operation prefix
// and provider suffix around it drive routing on the proxy side.
const functionBaseName = "amazon_location_service_provider"

// functionSpec describes one external function to create or drop.
type functionSpec struct {
	name     string
	args     string // CREATE signature
	argTypes string // DROP signature (types only)
}

// functionSpecs enumerates the external functions for the deployment. The
// grab pair exists only in the region that supports the Grab provider; this
// is a deployment-time fact, not a per-event decision.
func functionSpecs(grabSupported bool) []functionSpec {
	providers := []domain.Provider{domain.ProviderHere, domain.ProviderEsri}
	if grabSupported {
		providers = append(providers, domain.ProviderGrab)
	}

	specs := make([]functionSpec, 0, 2*len(providers))
	for _, p := range providers {
		specs = append(specs,
			functionSpec{
				name:     fmt.Sprintf("geocode_%s_%s", functionBaseName, p),
				args:     "address VARCHAR",
				argTypes: "VARCHAR",
			},
			functionSpec{
				name:     fmt.Sprintf("reverse_geocode_%s_%s", functionBaseName, p),
				args:     "longitude FLOAT, latitude FLOAT",
				argTypes: "FLOAT, FLOAT",
			},
		)
	}
	return specs
}

func createIntegrationStmt(name, roleARN, baseURL string) string {
	return fmt.Sprintf(
		"CREATE OR REPLACE API INTEGRATION %s API_PROVIDER = aws_api_gateway API_AWS_ROLE_ARN = '%s' ENABLED = TRUE API_ALLOWED_PREFIXES = ('%s')",
		name, roleARN, baseURL,
	)
}

func describeIntegrationStmt(name string) string {
	return fmt.Sprintf("DESCRIBE API INTEGRATION %s", name)
}

func dropIntegrationStmt(name string) string {
	return fmt.Sprintf("DROP API INTEGRATION %s", name)
}

// createFunctionStmts binds every external function to the integration and
// the current base URL.
func createFunctionStmts(integrationName, baseURL string, grabSupported bool) []string {
	specs := functionSpecs(grabSupported)
	stmts := make([]string, 0, len(specs))
	for _, spec := range specs {
		stmts = append(stmts, fmt.Sprintf(
			"CREATE OR REPLACE EXTERNAL FUNCTION %s(%s) RETURNS VARIANT API_INTEGRATION = %s AS '%s'",
			spec.name, spec.args, integrationName, baseURL,
		))
	}
	return stmts
}

func dropFunctionStmts(grabSupported bool) []string {
	specs := functionSpecs(grabSupported)
	stmts := make([]string, 0, len(specs))
	for _, spec := range specs {
		stmts = append(stmts, fmt.Sprintf("DROP FUNCTION %s(%s)", spec.name, spec.argTypes))
	}
	return stmts
}
