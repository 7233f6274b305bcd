// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// ResourceService owns the agreement between the resource store and the
// vector index. ContextService and ChatService record conversation turns and
// the chunks that informed them. SearchService embeds queries and resolves
// hits. SettingsService reads and writes configuration.
//
// Services are pure Go with no CGO or external dependencies beyond uuid.
package services
