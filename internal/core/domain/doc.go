// Package domain defines the core business entities for Mufti.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Fatwa: A bilingual ruling record
//   - Category: A node in the category tree
//   - PaginatedResult: A ranked, paginated page of fatwas
//   - AppSettings: Runtime configuration
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
