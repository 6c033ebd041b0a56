package daemon

import (
	"github.com/mfriesel/flint/internal/calc"
	"github.com/mfriesel/flint/internal/catalog"
	"github.com/mfriesel/flint/internal/engine"
	"github.com/mfriesel/flint/internal/rank"
)

// Wire operations. Requests and responses are newline-delimited JSON;
// one request per line, one response line back, IDs echoed.
const (
	OpQuery   = "query"
	OpRecord  = "record"
	OpRefresh = "refresh"
	OpPing    = "ping"
	OpStats   = "stats"
)

// Request is one frontend request to the daemon.
type Request struct {
	ID       string `json:"id"`
	Op       string `json:"op"`
	Query    string `json:"query,omitempty"`
	Limit    int    `json:"limit,omitempty"`
	Identity string `json:"identity,omitempty"`
}

// Response is the daemon's answer to one Request.
type Response struct {
	ID         string             `json:"id"`
	OK         bool               `json:"ok"`
	Error      string             `json:"error,omitempty"`
	Expression *ExpressionPayload `json:"expression,omitempty"`
	Matches    []MatchPayload     `json:"matches,omitempty"`
	Fallback   *ItemPayload       `json:"fallback,omitempty"`
	Stats      *StatsPayload      `json:"stats,omitempty"`
}

// ExpressionPayload carries an evaluated arithmetic query.
type ExpressionPayload struct {
	Expr  string  `json:"expr"`
	Value float64 `json:"value"`
}

// ItemPayload carries one catalog item.
type ItemPayload struct {
	Identity  string   `json:"identity"`
	Name      string   `json:"name"`
	Exec      []string `json:"exec,omitempty"`
	Source    string   `json:"source"`
	BaseScore int      `json:"base_score,omitempty"`
	NoDisplay bool     `json:"no_display,omitempty"`
}

// MatchPayload carries one ranked result.
type MatchPayload struct {
	ItemPayload
	FuzzyScore float64 `json:"fuzzy_score"`
	Combined   float64 `json:"combined"`
}

// StatsPayload carries daemon runtime statistics.
type StatsPayload struct {
	Items          int   `json:"items"`
	HistoryEntries int   `json:"history_entries"`
	UptimeSecs     int64 `json:"uptime_secs"`
	QueriesServed  int64 `json:"queries_served"`
	PID            int   `json:"pid"`
}

func itemPayload(item catalog.Item) ItemPayload {
	return ItemPayload{
		Identity:  item.Identity,
		Name:      item.Name,
		Exec:      item.Exec,
		Source:    string(item.Source),
		BaseScore: item.BaseScore,
		NoDisplay: item.NoDisplay,
	}
}

func (p ItemPayload) item() catalog.Item {
	return catalog.Item{
		Identity:  p.Identity,
		Name:      p.Name,
		Exec:      p.Exec,
		Source:    catalog.Source(p.Source),
		BaseScore: p.BaseScore,
		NoDisplay: p.NoDisplay,
	}
}

// resultsResponse maps engine query results onto the wire.
func resultsResponse(id string, res engine.Results) Response {
	resp := Response{ID: id, OK: true}

	if res.Expression != nil {
		resp.Expression = &ExpressionPayload{
			Expr:  res.Expression.Expr,
			Value: res.Expression.Value,
		}
	}

	if len(res.Matches) > 0 {
		resp.Matches = make([]MatchPayload, len(res.Matches))
		for i, m := range res.Matches {
			resp.Matches[i] = MatchPayload{
				ItemPayload: itemPayload(m.Item),
				FuzzyScore:  m.FuzzyScore,
				Combined:    m.Combined,
			}
		}
	}

	if res.Fallback != nil {
		p := itemPayload(*res.Fallback)
		resp.Fallback = &p
	}
	return resp
}

// results converts a wire response back into engine results.
func (r Response) results() engine.Results {
	var res engine.Results

	if r.Expression != nil {
		res.Expression = &calc.Result{
			Expr:  r.Expression.Expr,
			Value: r.Expression.Value,
		}
	}

	if len(r.Matches) > 0 {
		res.Matches = make([]rank.Match, len(r.Matches))
		for i, m := range r.Matches {
			res.Matches[i] = rank.Match{
				Item:       m.item(),
				FuzzyScore: m.FuzzyScore,
				Combined:   m.Combined,
			}
		}
	}

	if r.Fallback != nil {
		item := r.Fallback.item()
		res.Fallback = &item
	}
	return res
}
