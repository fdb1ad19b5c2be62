package main

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/stellar/stellar-quorum-analyzer/analyzer"
	"github.com/stellar/stellar-quorum-analyzer/fbas"
)

// analyzeRequest is the POST /analyze body: one of the two input forms
// must be populated; if both are, validators is used (SPEC_FULL.md §6).
type analyzeRequest struct {
	Validators    map[string]*fbas.QuorumSet `json:"validators,omitempty"`
	XDRNodes      [][]byte                   `json:"xdr_nodes,omitempty"`
	XDRQuorumSets [][]byte                   `json:"xdr_quorum_sets,omitempty"`
	MaxDuration   time.Duration              `json:"max_duration,omitempty"`
	MaxClauses    int                        `json:"max_clauses,omitempty"`
}

type server struct {
	log *zap.Logger
}

func (s *server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")
	if r.Method == http.MethodOptions {
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var req analyzeRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	g, err := s.buildGraph(&req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	a := analyzer.New(analyzer.Gini, s.log)
	verdict, err := a.Analyze(r.Context(), g, analyzer.Limits{
		MaxDuration: req.MaxDuration,
		MaxClauses:  req.MaxClauses,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := json.NewEncoder(w).Encode(verdict); err != nil {
		s.log.Warn("failed to write response", zap.Error(err))
	}
}

func (s *server) buildGraph(req *analyzeRequest) (*fbas.Graph, error) {
	if req.Validators != nil {
		return fbas.FromQuorumSetMap(req.Validators, s.log)
	}
	if len(req.XDRNodes) > 0 {
		return fbas.FromXDR(req.XDRNodes, req.XDRQuorumSets, s.log)
	}
	return nil, fbas.Newf(fbas.InputParse, "request must set either validators or xdr_nodes/xdr_quorum_sets")
}

func (s *server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	s := &server{log: log}

	http.HandleFunc("/analyze", s.handleAnalyze)
	http.HandleFunc("/healthz", s.handleHealthz)

	addr := os.Getenv("QUORUM_ANALYZER_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	log.Info("listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}
