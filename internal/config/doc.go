// Package config loads the JSON configuration used by the monoracle command:
// chain endpoints, logging, record publishing and fetch deadlines.
package config
