// Package service contains the application services that orchestrate domain
// entities and stores: the dispatch lifecycle (get-or-create, summary,
// complete with rollover, unfinalize), template materialization, task
// management, and the journal note event handler.
package service
