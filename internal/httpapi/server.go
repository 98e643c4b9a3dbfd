package httpapi

import (
	"net/http"
	"time"

	"github.com/nguyentantai21042004/interview-clips/internal/analysis"
	"github.com/nguyentantai21042004/interview-clips/internal/logger"
	"github.com/nguyentantai21042004/interview-clips/internal/session"
)

const serviceName = "interview-clips"

// multipart parts above this size spill to disk
const maxMemory = 8 << 20

// Authenticator validates shared-secret tokens
type Authenticator interface {
	Authenticate(token string) bool
}

// IndexResolver picks the question index of an uploaded clip
type IndexResolver interface {
	ResolveIndex(filename, explicit string) int
}

// Deps are the services behind the API
type Deps struct {
	Auth     Authenticator
	Sessions session.Manager
	Analysis analysis.Service
	Index    IndexResolver
	Logger   logger.Logger
}

// Options bound request sizes and locate scratch space
type Options struct {
	MaxUploadBytes int64
	TempDir        string
	Now            func() time.Time
}

// Server exposes the session and analysis services as JSON over HTTP
type Server struct {
	Deps
	opts Options
	mux  *http.ServeMux
}

// New creates a Server with all routes registered
func New(deps Deps, opts Options) *Server {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	s := &Server{Deps: deps, opts: opts, mux: http.NewServeMux()}

	s.mux.HandleFunc("GET /api/health", s.handleHealth)
	s.mux.HandleFunc("POST /api/verify-token", s.handleVerifyToken)
	s.mux.HandleFunc("POST /api/session/start", s.handleSessionStart)
	s.mux.HandleFunc("POST /api/upload-one", s.handleUploadOne)
	s.mux.HandleFunc("POST /api/session/finish", s.handleSessionFinish)
	s.mux.HandleFunc("POST /api/ai-analyze", s.handleAIAnalyze)
	s.mux.HandleFunc("GET /api/session/{id}", s.handleSessionGet)
	return s
}

// Handler returns the routes wrapped in the middleware chain
func (s *Server) Handler() http.Handler {
	return s.withRequestID(s.withRecover(s.withCORS(s.mux)))
}

// NewHTTPServer wraps the handler with connection timeouts. writeTimeout must cover a full analysis run.
func (s *Server) NewHTTPServer(addr string, writeTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       5 * time.Minute,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       60 * time.Second,
	}
}
