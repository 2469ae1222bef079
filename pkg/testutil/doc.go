// Package testutil holds fixtures shared by package tests: on-disk file trees
// and an environment isolated from the developer's own configuration.
package testutil
