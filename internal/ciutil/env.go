package ciutil

import (
	"log/slog"
	"os"

	"github.com/phrazzld/taskmanager-api/internal/redact"
)

// Environment variables consulted by this package.
const (
	EnvCI            = "CI"
	EnvGitHubActions = "GITHUB_ACTIONS"
	EnvGitLabCI      = "GITLAB_CI"
	EnvJenkinsURL    = "JENKINS_URL"
	EnvTravisCI      = "TRAVIS"
	EnvCircleCI      = "CIRCLECI"

	// EnvTestDatabaseURL points integration tests at an existing database.
	EnvTestDatabaseURL = "TASKAPI_TEST_DB_URL"
	EnvDatabaseURL     = "DATABASE_URL"
)

// Provider names returned by Provider.
const (
	ProviderGitHubActions = "github-actions"
	ProviderGitLab        = "gitlab"
	ProviderJenkins       = "jenkins"
	ProviderTravis        = "travis"
	ProviderCircleCI      = "circleci"
	ProviderGeneric       = "generic"
)

// IsCI reports whether the process runs under a CI system.
func IsCI() bool {
	return Provider() != ""
}

// Provider names the detected CI system, or "" outside CI.
func Provider() string {
	switch {
	case os.Getenv(EnvGitHubActions) != "":
		return ProviderGitHubActions
	case os.Getenv(EnvGitLabCI) != "":
		return ProviderGitLab
	case os.Getenv(EnvJenkinsURL) != "":
		return ProviderJenkins
	case os.Getenv(EnvTravisCI) != "":
		return ProviderTravis
	case os.Getenv(EnvCircleCI) != "":
		return ProviderCircleCI
	case os.Getenv(EnvCI) != "":
		return ProviderGeneric
	default:
		return ""
	}
}

// buildVars maps log keys to the variables each provider sets for the
// current run and commit.
var buildVars = map[string][][2]string{
	ProviderGitHubActions: {{"run_id", "GITHUB_RUN_ID"}, {"commit", "GITHUB_SHA"}, {"ref", "GITHUB_REF_NAME"}},
	ProviderGitLab:        {{"run_id", "CI_PIPELINE_ID"}, {"commit", "CI_COMMIT_SHA"}, {"ref", "CI_COMMIT_REF_NAME"}},
	ProviderJenkins:       {{"run_id", "BUILD_NUMBER"}, {"commit", "GIT_COMMIT"}, {"ref", "GIT_BRANCH"}},
	ProviderTravis:        {{"run_id", "TRAVIS_BUILD_ID"}, {"commit", "TRAVIS_COMMIT"}, {"ref", "TRAVIS_BRANCH"}},
	ProviderCircleCI:      {{"run_id", "CIRCLE_BUILD_NUM"}, {"commit", "CIRCLE_SHA1"}, {"ref", "CIRCLE_BRANCH"}},
}

// Metadata describes the current CI run. It is nil outside CI. Unset
// variables are omitted.
func Metadata() map[string]string {
	provider := Provider()
	if provider == "" {
		return nil
	}
	meta := map[string]string{"provider": provider}
	for _, kv := range buildVars[provider] {
		if v := os.Getenv(kv[1]); v != "" {
			meta[kv[0]] = v
		}
	}
	return meta
}

// GetEnvWithFallbacks returns the first non-empty variable among envVars,
// or defaultValue. Falling back past the first name logs a warning with the
// value masked.
func GetEnvWithFallbacks(envVars []string, defaultValue string, logger *slog.Logger) string {
	for i, envVar := range envVars {
		val := os.Getenv(envVar)
		if val == "" {
			continue
		}
		if i > 0 && logger != nil {
			logger.Warn("using fallback environment variable",
				slog.String("used_var", envVar),
				slog.String("preferred_var", envVars[0]),
				slog.String("value", redact.DatabaseURL(val)))
		}
		return val
	}
	return defaultValue
}

// TestDatabaseURL returns the integration test database URL, if any.
func TestDatabaseURL(logger *slog.Logger) string {
	return GetEnvWithFallbacks([]string{EnvTestDatabaseURL, EnvDatabaseURL}, "", logger)
}
