package service

import (
	"context"
	"encoding/json"
	"errors"
	"io/ioutil"
	"log"
	"net/http"
	"strings"

	"github.com/Comcast/patmatch/core"
	"github.com/Comcast/patmatch/match"
	"github.com/Comcast/patmatch/tools"

	"github.com/gorilla/websocket"
)

// MaxDocumentSize limits request bodies.
var MaxDocumentSize int64 = 1 << 20

func writeJSON(w http.ResponseWriter, status int, x interface{}) {
	js, err := json.Marshal(x)
	if err != nil {
		log.Printf("Service writeJSON error %s", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(js)
	w.Write([]byte("\n"))
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var (
		badName   *BadName
		badClause *core.BadClause
	)
	switch {
	case errors.Is(err, NotFound):
		status = http.StatusNotFound
	case errors.As(err, &badName), errors.As(err, &badClause):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]interface{}{
		"error": err.Error(),
	})
}

// Handler returns the HTTP API:
//
//	GET    /specs                 names of stored documents
//	PUT    /specs/NAME            store a document (YAML or JSON)
//	GET    /specs/NAME            the document as stored
//	GET    /specs/NAME.html       the document rendered as HTML
//	DELETE /specs/NAME            remove a document
//	POST   /specs/NAME/eval       evaluate the JSON subject in the body
//	POST   /specs/NAME/trace      same but with traces
//	GET    /ws                    WebSocket evaluations
func (s *Service) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/specs", s.handleList)
	mux.HandleFunc("/specs/", s.handleSpec)
	mux.HandleFunc("/ws", s.WebSocketHandler(ctx))
	return mux
}

func (s *Service) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	names, err := s.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, names)
}

func (s *Service) handleSpec(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	path := strings.TrimPrefix(r.URL.Path, "/specs/")
	name, op := path, ""
	if i := strings.Index(path, "/"); 0 <= i {
		name, op = path[:i], path[i+1:]
	}

	if name == "" {
		s.handleList(w, r)
		return
	}

	switch {
	case op == "" && r.Method == http.MethodGet && strings.HasSuffix(name, ".html"):
		s.handleHTML(w, r, strings.TrimSuffix(name, ".html"))

	case op == "" && r.Method == http.MethodGet:
		src, err := s.Source(ctx, name)
		if err != nil {
			writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/x-yaml")
		w.Write(src)

	case op == "" && r.Method == http.MethodPut:
		src, err := ioutil.ReadAll(http.MaxBytesReader(w, r.Body, MaxDocumentSize))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		spec, err := s.PutSpec(ctx, name, src)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"name":    spec.Name,
			"id":      spec.Id,
			"clauses": len(spec.Clauses),
		})

	case op == "" && r.Method == http.MethodDelete:
		if err := s.DeleteSpec(ctx, name); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	case (op == "eval" || op == "trace") && r.Method == http.MethodPost:
		js, err := ioutil.ReadAll(http.MaxBytesReader(w, r.Body, MaxDocumentSize))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		subject, err := match.ParseJSON(js)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		res, ts, err := s.Evaluate(ctx, name, subject, op == "trace")
		if errors.Is(err, NotFound) {
			writeError(w, err)
			return
		}
		resp := Response(name, res, ts, err)
		status := http.StatusOK
		if resp.Error != "" {
			status = http.StatusInternalServerError
		}
		writeJSON(w, status, resp)

	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

func (s *Service) handleHTML(w http.ResponseWriter, r *http.Request, name string) {
	spec, err := s.Spec(r.Context(), name)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err = tools.RenderSpecPage(spec, w, nil, false); err != nil {
		log.Printf("Service.handleHTML %s error %s", name, err)
	}
}

// EvalRequest is a WebSocket request.
type EvalRequest struct {
	Id      interface{}     `json:"id,omitempty"`
	Spec    string          `json:"spec"`
	Subject json.RawMessage `json:"subject"`
	Trace   bool            `json:"trace,omitempty"`
}

// WebSocketHandler reads EvalRequests and writes EvalResponses.
//
// Requests are processed in order.
func (s *Service) WebSocketHandler(ctx context.Context) http.HandlerFunc {
	var upgrader = websocket.Upgrader{} // use default options

	return func(w http.ResponseWriter, r *http.Request) {
		s.logf("WebSocketHandler connection from %s", r.RemoteAddr)

		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade error", err)
			return
		}
		defer c.Close()

		for {
			mt, message, err := c.ReadMessage()
			if err != nil {
				s.logf("WebSocketHandler read error %s", err)
				break
			}
			if ctx.Err() != nil {
				break
			}

			var (
				req  EvalRequest
				resp *EvalResponse
			)
			if err = json.Unmarshal(message, &req); err != nil {
				resp = &EvalResponse{Error: "can't parse: " + err.Error()}
			} else if subject, err := match.ParseJSON(req.Subject); err != nil {
				resp = &EvalResponse{Spec: req.Spec, Error: "bad subject: " + err.Error()}
			} else {
				res, ts, err := s.Evaluate(ctx, req.Spec, subject, req.Trace)
				resp = Response(req.Spec, res, ts, err)
			}
			resp.Id = req.Id

			js, err := json.Marshal(resp)
			if err != nil {
				log.Printf("WebSocketHandler Marshal error %v on %#v", err, resp)
				continue
			}
			if err = c.WriteMessage(mt, js); err != nil {
				log.Println("WebSocketHandler write:", err)
				break
			}
		}
	}
}

// ListenAndServe runs the HTTP server until the context is done.
func (s *Service) ListenAndServe(ctx context.Context) error {
	server := &http.Server{
		Addr:    s.Config.Addr,
		Handler: s.Handler(ctx),
	}
	go func() {
		<-ctx.Done()
		server.Close()
	}()
	log.Printf("Service listening on %s", s.Config.Addr)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
