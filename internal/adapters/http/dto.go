package httpadapter

import (
	"encoding/json"
	"errors"
	"time"

	"dealmatch/internal/domain"
	"dealmatch/internal/onboarding"
	"dealmatch/internal/ports"
)

type profileResponse struct {
	ID          string            `json:"id"`
	Role        domain.Role       `json:"type"`
	Name        string            `json:"name"`
	Email       string            `json:"email,omitempty"`
	Company     string            `json:"company,omitempty"`
	Location    string            `json:"location,omitempty"`
	Industry    string            `json:"industry,omitempty"`
	Budget      string            `json:"budget,omitempty"`
	Revenue     string            `json:"revenue,omitempty"`
	Employees   string            `json:"employees,omitempty"`
	Description string            `json:"description,omitempty"`
	Verified    bool              `json:"verified"`
	Interests   []string          `json:"interests"`
	Attributes  map[string]string `json:"attributes,omitempty"`
	LastActive  string            `json:"lastActive"`
	CreatedAt   time.Time         `json:"createdAt"`
}

func toProfile(p domain.Profile) profileResponse {
	interests := p.Interests
	if interests == nil {
		interests = []string{}
	}
	return profileResponse{
		ID: p.ID, Role: p.Role, Name: p.Name, Email: p.Email, Company: p.Company,
		Location: p.Location, Industry: p.Industry, Budget: p.Budget, Revenue: p.Revenue,
		Employees: p.Employees, Description: p.Description, Verified: p.Verified,
		Interests: interests, Attributes: p.Attributes, LastActive: p.LastActive, CreatedAt: p.CreatedAt,
	}
}

func toProfiles(ps []domain.Profile) []profileResponse {
	out := make([]profileResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, toProfile(p))
	}
	return out
}

type matchResponse struct {
	ID            string             `json:"id"`
	ViewerID      string             `json:"viewerId"`
	Profile       profileResponse    `json:"user"`
	Status        domain.MatchStatus `json:"status"`
	MatchedAt     time.Time          `json:"matchedAt"`
	LastMessage   *string            `json:"lastMessage,omitempty"`
	LastMessageAt *time.Time         `json:"lastMessageAt,omitempty"`
}

func toMatch(m domain.Match) matchResponse {
	return matchResponse{
		ID: m.ID, ViewerID: m.ViewerID, Profile: toProfile(m.Profile), Status: m.Status,
		MatchedAt: m.CreatedAt, LastMessage: m.LastMessage, LastMessageAt: m.LastMessageAt,
	}
}

func toMatches(ms []domain.Match) []matchResponse {
	out := make([]matchResponse, 0, len(ms))
	for _, m := range ms {
		out = append(out, toMatch(m))
	}
	return out
}

type documentResponse struct {
	ID         string                `json:"id"`
	Name       string                `json:"name"`
	Type       string                `json:"type"`
	UploadedAt time.Time             `json:"uploadDate"`
	Status     domain.DocumentStatus `json:"status"`
	Summary    *string               `json:"summary,omitempty"`
	KeyMetrics map[string]string     `json:"keyMetrics,omitempty"`
	Error      *string               `json:"error,omitempty"`
	FinishedAt *time.Time            `json:"finishedAt,omitempty"`
}

func toDocument(d domain.Document) documentResponse {
	return documentResponse{
		ID: d.ID, Name: d.Name, Type: d.Type, UploadedAt: d.UploadedAt, Status: d.Status,
		Summary: d.Summary, KeyMetrics: d.KeyMetrics, Error: d.Error, FinishedAt: d.FinishedAt,
	}
}

type stateResponse struct {
	SessionID string                     `json:"sessionId"`
	Role      domain.Role                `json:"role"`
	Step      int                        `json:"step"`
	StepCount int                        `json:"stepCount"`
	Current   domain.Step                `json:"current"`
	Answers   map[string]json.RawMessage `json:"answers"`
	Finished  bool                       `json:"finished"`
}

func toState(sessionID string, st onboarding.State) stateResponse {
	answers := make(map[string]json.RawMessage, len(st.Answers))
	for id, a := range st.Answers {
		var raw []byte
		if a.IsSet() {
			raw, _ = json.Marshal(a.Values)
		} else {
			raw, _ = json.Marshal(a.Text)
		}
		answers[id] = raw
	}
	return stateResponse{
		SessionID: sessionID, Role: st.Role, Step: st.Step, StepCount: st.StepCount,
		Current: st.Current, Answers: answers, Finished: st.Finished,
	}
}

type completedResponse struct {
	State   stateResponse   `json:"state"`
	Profile profileResponse `json:"profile"`
}

type dashboardResponse struct {
	ViewerID        string                        `json:"viewerId"`
	Matches         int                           `json:"matches"`
	MatchesByStatus map[domain.MatchStatus]int    `json:"matchesByStatus"`
	Recent          []matchResponse               `json:"recentMatches"`
	Documents       map[domain.DocumentStatus]int `json:"documents"`
}

func toDashboard(s ports.DashboardSummary) dashboardResponse {
	return dashboardResponse{
		ViewerID: s.ViewerID, Matches: s.Matches, MatchesByStatus: s.MatchesByStatus,
		Recent: toMatches(s.Recent), Documents: s.Documents,
	}
}

type beginRequest struct {
	Role domain.Role `json:"role"`
}

// answerRequest carries a string for scalar fields or an array of option
// strings for multi-select fields.
type answerRequest struct {
	Value json.RawMessage `json:"value"`
}

var errAnswerShape = errors.New("value must be a string or an array of strings")

func (a answerRequest) toAnswer() (domain.Answer, error) {
	var text string
	if err := json.Unmarshal(a.Value, &text); err == nil {
		return domain.Text(text), nil
	}
	var values []string
	if err := json.Unmarshal(a.Value, &values); err == nil && values != nil {
		return domain.Selection(values...), nil
	}
	return domain.Answer{}, errAnswerShape
}

type swipeRequest struct {
	Direction string `json:"direction"`
}

type swipeResponse struct {
	Match     *matchResponse `json:"match,omitempty"`
	Position  int            `json:"position"`
	Exhausted bool           `json:"exhausted"`
}

type currentResponse struct {
	Profile  profileResponse `json:"profile"`
	Position int             `json:"position"`
}

type stackResponse struct {
	Profiles []profileResponse `json:"profiles"`
	Position int               `json:"position"`
}

type matchPatchRequest struct {
	Status      *domain.MatchStatus `json:"status"`
	LastMessage *string             `json:"lastMessage"`
}

type uploadRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type completeRequest struct {
	Summary    string            `json:"summary"`
	KeyMetrics map[string]string `json:"keyMetrics"`
}

type failRequest struct {
	Reason string `json:"reason"`
}
