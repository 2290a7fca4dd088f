package httpadapter

import (
	"context"
	"log/slog"

	"openknesset/contexts/civic-data/agenda-service/application/commands"
	"openknesset/contexts/civic-data/agenda-service/application/queries"
	"openknesset/contexts/civic-data/agenda-service/ports"
	httptransport "openknesset/contexts/civic-data/agenda-service/transport/http"
)

type Handler struct {
	Agendas     commands.AgendaUseCase
	AgendaVotes commands.AgendaVoteUseCase
	Queries     queries.AgendaQueries
	Logger      *slog.Logger
}

func (h Handler) ListAgendasHandler(ctx context.Context, userID string) (httptransport.AgendaListResponse, error) {
	list, err := h.Queries.ListAgendas(ctx, userID)
	if err != nil {
		return httptransport.AgendaListResponse{}, err
	}
	items := make([]httptransport.AgendaSummary, 0, len(list.Agendas))
	for _, agenda := range list.Agendas {
		items = append(items, httptransport.AgendaSummary{
			AgendaID:        agenda.AgendaID,
			Name:            agenda.Name,
			PublicOwnerName: agenda.PublicOwnerName,
			Description:     agenda.Description,
			Watched:         list.Watched[agenda.AgendaID],
		})
	}
	return httptransport.AgendaListResponse{Agendas: items}, nil
}

func (h Handler) AgendaDetailHandler(ctx context.Context, agendaID string, userID string) (httptransport.AgendaDetailResponse, error) {
	detail, err := h.Queries.AgendaDetail(ctx, agendaID, userID)
	if err != nil {
		return httptransport.AgendaDetailResponse{}, err
	}
	agendaVotes := make([]httptransport.AgendaVoteItem, 0, len(detail.Votes))
	for _, agendaVote := range detail.Votes {
		agendaVotes = append(agendaVotes, httptransport.AgendaVoteItem{
			AgendaVoteID: agendaVote.AgendaVoteID,
			VoteID:       agendaVote.VoteID,
			Score:        agendaVote.Score,
			Reasoning:    agendaVote.Reasoning,
		})
	}
	return httptransport.AgendaDetailResponse{
		AgendaID:        detail.Agenda.AgendaID,
		Title:           detail.Title,
		Name:            detail.Agenda.Name,
		PublicOwnerName: detail.Agenda.PublicOwnerName,
		Description:     detail.Agenda.Description,
		Watched:         detail.Watched,
		AgendaVotes:     agendaVotes,
		SelectedMembers: mapRankedInstances(detail.TopMembers, detail.BottomMembers),
		SelectedParties: mapRankedInstances(detail.TopParties, detail.BottomParties),
	}, nil
}

func (h Handler) EditAgendaFormHandler(ctx context.Context, agendaID string, userID string) (httptransport.AgendaFormPageResponse, error) {
	agenda, err := h.Queries.EditForm(ctx, agendaID, userID)
	if err != nil {
		return httptransport.AgendaFormPageResponse{}, err
	}
	return httptransport.AgendaFormPageResponse{
		Form: httptransport.AgendaForm{
			Name:            agenda.Name,
			PublicOwnerName: agenda.PublicOwnerName,
			Description:     agenda.Description,
		},
	}, nil
}

// EditAgendaHandler validates and applies an edit submission. Invalid input
// re-renders the form response with field errors; a successful save reports
// the detail-page redirect target.
func (h Handler) EditAgendaHandler(
	ctx context.Context,
	agendaID string,
	userID string,
	form httptransport.AgendaForm,
) (httptransport.EditAgendaResponse, error) {
	if fieldErrors := form.Validate(); fieldErrors != nil {
		// The guard still applies before showing errors to a non-editor.
		if _, err := h.Queries.EditForm(ctx, agendaID, userID); err != nil {
			return httptransport.EditAgendaResponse{}, err
		}
		return httptransport.EditAgendaResponse{Form: form, FieldErrors: fieldErrors}, nil
	}

	agenda, err := h.Agendas.EditAgenda(ctx, commands.EditAgendaCommand{
		AgendaID:        agendaID,
		UserID:          userID,
		Name:            form.Name,
		PublicOwnerName: form.PublicOwnerName,
		Description:     form.Description,
	})
	if err != nil {
		return httptransport.EditAgendaResponse{}, err
	}
	return httptransport.EditAgendaResponse{
		Saved:      true,
		RedirectTo: "/agendas/" + agenda.AgendaID,
		Form:       form,
	}, nil
}

func (h Handler) NewAgendaFormHandler(ctx context.Context, userID string) (httptransport.AgendaFormPageResponse, error) {
	ownerName, err := h.Agendas.SuggestedOwnerName(ctx, userID)
	if err != nil {
		return httptransport.AgendaFormPageResponse{}, err
	}
	return httptransport.AgendaFormPageResponse{
		Form: httptransport.AgendaForm{PublicOwnerName: ownerName},
	}, nil
}

func (h Handler) CreateAgendaHandler(
	ctx context.Context,
	userID string,
	form httptransport.AgendaForm,
) (httptransport.CreateAgendaResponse, error) {
	if fieldErrors := form.Validate(); fieldErrors != nil {
		if _, err := h.Agendas.SuggestedOwnerName(ctx, userID); err != nil {
			return httptransport.CreateAgendaResponse{}, err
		}
		return httptransport.CreateAgendaResponse{Form: form, FieldErrors: fieldErrors}, nil
	}

	agenda, err := h.Agendas.CreateAgenda(ctx, commands.CreateAgendaCommand{
		UserID:          userID,
		Name:            form.Name,
		PublicOwnerName: form.PublicOwnerName,
		Description:     form.Description,
	})
	if err != nil {
		return httptransport.CreateAgendaResponse{}, err
	}
	return httptransport.CreateAgendaResponse{
		Created:    true,
		AgendaID:   agenda.AgendaID,
		RedirectTo: "/agendas",
		Form:       form,
	}, nil
}

func (h Handler) VoteActionHandler(
	ctx context.Context,
	agendaID string,
	voteID string,
	userID string,
	action string,
	reasoning string,
) (httptransport.VoteActionResponse, error) {
	result, err := h.AgendaVotes.ApplyVoteAction(ctx, commands.VoteActionCommand{
		AgendaID:  agendaID,
		VoteID:    voteID,
		UserID:    userID,
		Action:    action,
		Reasoning: reasoning,
	})
	if err != nil {
		return httptransport.VoteActionResponse{}, err
	}
	if !result.Accepted {
		return httptransport.VoteActionResponse{Message: result.Message}, nil
	}
	return httptransport.VoteActionResponse{
		Accepted: true,
		Vote:     mapVoteRepresentation(result.Vote),
	}, nil
}

func mapRankedInstances(top []ports.RankedInstance, bottom []ports.RankedInstance) []httptransport.RankedInstanceItem {
	items := make([]httptransport.RankedInstanceItem, 0, len(top)+len(bottom))
	for _, instance := range append(append([]ports.RankedInstance(nil), top...), bottom...) {
		items = append(items, httptransport.RankedInstanceItem{
			ID:    instance.ID,
			Name:  instance.Name,
			Score: instance.Score,
		})
	}
	return items
}

func mapVoteRepresentation(representation ports.VoteRepresentation) *httptransport.VoteRepresentationResponse {
	stances := make([]httptransport.VoteAgendaStanceItem, 0, len(representation.Agendas))
	for _, stance := range representation.Agendas {
		stances = append(stances, httptransport.VoteAgendaStanceItem{
			AgendaID:  stance.AgendaID,
			Score:     stance.Score,
			Reasoning: stance.Reasoning,
		})
	}
	return &httptransport.VoteRepresentationResponse{
		VoteID:  representation.VoteID,
		Title:   representation.Title,
		Time:    representation.Time,
		Summary: representation.Summary,
		Agendas: stances,
	}
}
