package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const linksCacheTTL = time.Minute

var errBodyTooLarge = errors.New("request body too large")

type apiError struct {
	Error string `json:"error"`
}

type base58Request struct {
	Mode        string `json:"mode"`
	Input       string `json:"input"`
	InputFormat string `json:"input_format,omitempty"`
}

type base58Response struct {
	Mode      string `json:"mode"`
	Output    string `json:"output"`
	OutputHex string `json:"output_hex"`
	ValidUTF8 bool   `json:"valid_utf8"`
	Error     string `json:"error,omitempty"`
}

type checkRequest struct {
	Mode     string `json:"mode"`
	Version  int    `json:"version"`
	InputHex string `json:"input_hex,omitempty"`
	Input    string `json:"input,omitempty"`
}

type checkResponse struct {
	Output     string `json:"output,omitempty"`
	Version    int    `json:"version"`
	PayloadHex string `json:"payload_hex"`
}

type conversionResponse struct {
	SOL      string `json:"sol"`
	Lamports string `json:"lamports"`
}

func (s *ToolsServer) serveAPI(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/base58":
		if allowMethods(w, r, http.MethodGet, http.MethodPost) {
			s.handleBase58(w, r)
		}
	case "/api/base58/batch":
		if allowMethods(w, r, http.MethodPost) {
			s.handleBase58Batch(w, r)
		}
	case "/api/base58check":
		if allowMethods(w, r, http.MethodGet, http.MethodPost) {
			s.handleBase58Check(w, r)
		}
	case "/api/validate":
		if allowMethods(w, r, http.MethodGet) {
			s.handleValidate(w, r)
		}
	case "/api/convert":
		if allowMethods(w, r, http.MethodGet) {
			s.handleConvert(w, r)
		}
	case "/api/links":
		if allowMethods(w, r, http.MethodGet) {
			s.handleLinks(w, r)
		}
	case "/api/stats":
		if allowMethods(w, r, http.MethodGet) {
			s.writeJSON(w, http.StatusOK, s.metrics.Snapshot(s.now()))
		}
	default:
		s.writeJSONError(w, http.StatusNotFound, "unknown endpoint")
	}
}

func (s *ToolsServer) writeJSON(w http.ResponseWriter, status int, v any) {
	payload, err := fastJSONMarshal(v)
	if err != nil {
		logger.Error("encode api response", "error", err)
		setNoStoreHeaders(w, "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}
	setNoStoreHeaders(w, "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}

func (s *ToolsServer) writeJSONError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, apiError{Error: msg})
}

// readJSONBody decodes a request body of at most cfg.MaxBodyBytes into v.
func (s *ToolsServer) readJSONBody(r *http.Request, v any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, s.cfg.MaxBodyBytes+1))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > s.cfg.MaxBodyBytes {
		return errBodyTooLarge
	}
	if err := fastJSONUnmarshal(body, v); err != nil {
		return fmt.Errorf("parse body: %w", err)
	}
	return nil
}

func (s *ToolsServer) badRequest(w http.ResponseWriter, endpoint string, err error) {
	s.metrics.RecordRequest(endpoint, true)
	status := http.StatusBadRequest
	if errors.Is(err, errBodyTooLarge) || errors.Is(err, errInputTooLarge) {
		status = http.StatusRequestEntityTooLarge
	}
	s.writeJSONError(w, status, err.Error())
}

func (s *ToolsServer) handleBase58(w http.ResponseWriter, r *http.Request) {
	var req base58Request
	if r.Method == http.MethodPost {
		if err := s.readJSONBody(r, &req); err != nil {
			s.badRequest(w, "base58", err)
			return
		}
	} else {
		q := r.URL.Query()
		req = base58Request{Mode: q.Get("mode"), Input: q.Get("input"), InputFormat: q.Get("input_format")}
	}
	resp, err := runBase58Request(req.Mode, req.Input, req.InputFormat, s.cfg.MaxInputBytes)
	if err != nil {
		s.metrics.RecordRequest("base58", true)
		status := http.StatusBadRequest
		if errors.Is(err, errInputTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		s.writeJSON(w, status, resp)
		return
	}
	s.metrics.RecordRequest("base58", false)
	s.writeJSON(w, http.StatusOK, resp)
}

// runBase58Request runs one tool call for the API. On failure the returned
// response carries the message in Error alongside the error itself.
func runBase58Request(mode, input, format string, maxInput int) (base58Response, error) {
	mode = strings.ToLower(strings.TrimSpace(mode))
	if mode == "" {
		mode = modeEncode
	}
	res, err := runBase58Tool(mode, input, format, maxInput)
	if err != nil {
		return base58Response{Mode: mode, Error: err.Error()}, err
	}
	return base58Response{
		Mode:      mode,
		Output:    res.Output,
		OutputHex: res.OutputHex,
		ValidUTF8: res.ValidUTF8,
	}, nil
}

func (s *ToolsServer) handleBase58Batch(w http.ResponseWriter, r *http.Request) {
	var req base58BatchRequest
	if err := s.readJSONBody(r, &req); err != nil {
		s.badRequest(w, "base58_batch", err)
		return
	}
	if len(req.Inputs) > s.cfg.BatchMaxItems {
		s.badRequest(w, "base58_batch", fmt.Errorf("batch has %d inputs, limit is %d", len(req.Inputs), s.cfg.BatchMaxItems))
		return
	}
	resp, err := runBase58Batch(r.Context(), req, s.cfg.BatchWorkers, s.cfg.MaxInputBytes)
	if err != nil {
		s.badRequest(w, "base58_batch", err)
		return
	}
	s.metrics.RecordRequest("base58_batch", false)
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *ToolsServer) handleBase58Check(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if r.Method == http.MethodPost {
		if err := s.readJSONBody(r, &req); err != nil {
			s.badRequest(w, "base58check", err)
			return
		}
	} else {
		q := r.URL.Query()
		req = checkRequest{Mode: q.Get("mode"), InputHex: q.Get("input_hex"), Input: q.Get("input")}
		if v := q.Get("version"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				s.badRequest(w, "base58check", fmt.Errorf("version: %w", err))
				return
			}
			req.Version = n
		}
	}
	resp, err := runCheckRequest(req, s.cfg.MaxInputBytes)
	if err != nil {
		s.badRequest(w, "base58check", err)
		return
	}
	s.metrics.RecordRequest("base58check", false)
	s.writeJSON(w, http.StatusOK, resp)
}

func runCheckRequest(req checkRequest, maxInput int) (checkResponse, error) {
	if err := checkInputSize(req.InputHex, maxInput); err != nil {
		return checkResponse{}, err
	}
	if err := checkInputSize(req.Input, maxInput); err != nil {
		return checkResponse{}, err
	}
	switch strings.ToLower(strings.TrimSpace(req.Mode)) {
	case "", modeEncode:
		if req.Version < 0 || req.Version > 255 {
			return checkResponse{}, fmt.Errorf("version %d outside 0-255", req.Version)
		}
		payload, err := inputBytes(req.InputHex, inputFormatHex)
		if err != nil {
			return checkResponse{}, err
		}
		return checkResponse{
			Output:     checkEncode(byte(req.Version), payload),
			Version:    req.Version,
			PayloadHex: hex.EncodeToString(payload),
		}, nil
	case modeDecode:
		version, payload, err := checkDecode(strings.TrimSpace(req.Input))
		if err != nil {
			return checkResponse{}, err
		}
		return checkResponse{Version: int(version), PayloadHex: hex.EncodeToString(payload)}, nil
	}
	return checkResponse{}, errUnknownMode
}

func (s *ToolsServer) handleValidate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	network := q.Get("network")
	if network == "" {
		network = s.cfg.AddressNetwork
	}
	check, err := validateAddress(q.Get("address"), network, s.cfg.AddressRules)
	if err != nil {
		s.badRequest(w, "validate", err)
		return
	}
	s.metrics.RecordRequest("validate", false)
	s.writeJSON(w, http.StatusOK, check)
}

func (s *ToolsServer) handleConvert(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var resp conversionResponse
	switch {
	case q.Has("sol"):
		lamports, err := solToLamports(q.Get("sol"))
		if err != nil {
			s.badRequest(w, "convert", err)
			return
		}
		resp = conversionResponse{SOL: formatSOL(lamports), Lamports: strconv.FormatUint(lamports, 10)}
	case q.Has("lamports"):
		lamports, err := parseLamports(q.Get("lamports"))
		if err != nil {
			s.badRequest(w, "convert", err)
			return
		}
		resp = conversionResponse{SOL: formatSOL(lamports), Lamports: strconv.FormatUint(lamports, 10)}
	default:
		s.badRequest(w, "convert", errors.New("pass sol or lamports"))
		return
	}
	s.metrics.RecordRequest("convert", false)
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *ToolsServer) handleLinks(w http.ResponseWriter, _ *http.Request) {
	s.metrics.RecordRequest("links", false)
	s.serveCachedJSON(w, "links", linksCacheTTL, func() ([]byte, error) {
		return fastJSONMarshal(s.cfg.QuickLinks)
	})
}
