// Package config loads the deployment configuration.
//
// Settings live in a YAML file (config.yaml by default) validated with
// go-playground/validator. Credentials are never read from the file: they come
// from EXO_API_KEY, EXO_API_SECRET and DOCKER_HUB_TOKEN, optionally seeded from
// a .env file next to the config. Deadlines and retry budgets are in
// [Timeouts], overridable through EXODEPLOY_* environment variables.
package config
