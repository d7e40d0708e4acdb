// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - FatwaStore: Fatwa persistence, text and pattern matching
//   - CategoryStore: Category tree persistence
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - RankingOracle: Semantic ranking. Without it, search starts at the store text index.
//   - OracleIndexer: Keeps the oracle index current on writes.
//   - Translator: Fills secondary-language fields on writes.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
