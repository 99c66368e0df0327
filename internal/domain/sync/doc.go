// Package sync contains the core domain model for reconciling inventory
// and customer records between a point-of-sale backend (the Source) and a
// storefront backend (the Target): durable job progress, resumable pull
// cursors, entity and location mappings, and the multi-location inventory
// aggregator. Concrete transports for either backend live behind the port
// interfaces in ports.go.
package sync
