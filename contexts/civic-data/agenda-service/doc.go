// Package agendaservice implements the Agenda service inside the civic-data
// context.
//
// The module owns agenda lifecycle writes (editor-guarded edits,
// superuser-guarded creation), the relevance-filtered listing and detail
// reads, and the single-action endpoint that ascribes votes to agendas and
// maintains each pair's score and reasoning. Business rules live in the
// application/domain layers; persistence, HTTP mapping and the external vote
// presentation sit behind ports and adapters.
package agendaservice
