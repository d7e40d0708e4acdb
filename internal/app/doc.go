// Package app is the composition root. It reads settings, opens the
// configured stores and builds the core services with their optional
// oracle and translator dependencies.
package app
