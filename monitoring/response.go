package monitoring

import (
	"encoding/json"
	"net/http"

	"github.com/sarchlab/vmsim/display"
	"github.com/sarchlab/vmsim/translator"
)

type errorRsp struct {
	Error string `json:"error"`
}

type messageRsp struct {
	Message string `json:"message"`
}

type systemRsp struct {
	Message string         `json:"message"`
	Tables  display.Tables `json:"tables"`
}

type sequenceRsp struct {
	Message  string   `json:"message,omitempty"`
	Sequence []string `json:"sequence"`
}

type statsRsp struct {
	TLBHits    uint64  `json:"tlb_hits"`
	TLBMisses  uint64  `json:"tlb_misses"`
	TLBHitRate float64 `json:"tlb_hit_rate"`
	PTHits     uint64  `json:"pt_hits"`
	PTMisses   uint64  `json:"pt_misses"`
	PTHitRate  float64 `json:"pt_hit_rate"`
}

type stepRsp struct {
	Messages  []string                                      `json:"messages"`
	Stats     statsRsp                                      `json:"stats"`
	Sequence  []string                                      `json:"sequence"`
	Colors    map[translator.Table]map[int]translator.Color `json:"colors"`
	Changes   []translator.HighlightChange                  `json:"changes"`
	PageTable []display.PageTableRow                        `json:"page_table"`
	TLBTable  []display.TLBRow                              `json:"tlb_table"`
	Complete  bool                                          `json:"complete"`
	Tables    *display.Tables                               `json:"tables,omitempty"`
}

func makeStats(s translator.Stats) statsRsp {
	return statsRsp{
		TLBHits:    s.TLBHit,
		TLBMisses:  s.TLBMiss,
		TLBHitRate: s.TLBHitRate(),
		PTHits:     s.PTHit,
		PTMisses:   s.PTMiss,
		PTHitRate:  s.PTHitRate(),
	}
}

func formatSequence(e *translator.Engine) []string {
	return display.Sequence(e.AddressSequence(), e.Config().VASWidth)
}

// makeStepRsp reports the state of the engine. The highlight changes are only
// consumed when consume is set.
func (s *Server) makeStepRsp(
	e *translator.Engine,
	complete, consume bool,
) stepRsp {
	rsp := stepRsp{
		Messages:  e.Messages(),
		Stats:     makeStats(e.Stats()),
		Sequence:  formatSequence(e),
		Colors:    e.Highlights(),
		PageTable: display.PageTable(e.PageTable()),
		TLBTable:  display.TLBTable(e),
		Complete:  complete,
	}

	if consume {
		rsp.Changes = e.ConsumeHighlightChanges()
	}

	if rsp.Changes == nil {
		rsp.Changes = []translator.HighlightChange{}
	}

	return rsp
}

func writeJSON(w http.ResponseWriter, v any) {
	bytes, err := json.Marshal(v)
	dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")
	_, err = w.Write(bytes)
	dieOnErr(err)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	bytes, err := json.Marshal(errorRsp{Error: msg})
	dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(bytes)
	dieOnErr(err)
}
