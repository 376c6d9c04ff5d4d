package dashboard

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"math/big"
	"net/http"
	"net/url"
	"sort"

	"github.com/citizenwallet/govdash/internal/app"
	"github.com/citizenwallet/govdash/internal/auth"
	com "github.com/citizenwallet/govdash/internal/common"
	"github.com/citizenwallet/govdash/internal/dispatch"
	"github.com/citizenwallet/govdash/internal/governance"
	gov "github.com/citizenwallet/govdash/pkg/governance"
	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFiles embed.FS

var funcs = template.FuncMap{
	"short":   com.ShortenAddress,
	"shortID": func(id string) string { return com.ShortenName(id, 6) },
	"allows": func(s gov.ProposalState, a string) bool {
		return s.Allows(gov.Action(a))
	},
	"tokens": func(wei string) string {
		i, ok := new(big.Int).SetString(wei, 10)
		if !ok {
			return "0"
		}
		return com.FormatTokenAmount(i)
	},
}

// App is the part of the application state the dashboard drives
type App interface {
	Snapshot() app.State
	Connect(ctx context.Context, passphrase string) (gov.Identity, error)
	Disconnect() error
	Refresh(ctx context.Context) error
	Submit(ctx context.Context, req dispatch.Request) (*dispatch.Pending, error)
	SetNotice(err error)
}

type Options struct {
	ChainName string
	Roles     map[string]common.Hash
	// Keystore shows a passphrase field on the connect form
	Keystore bool
	// APIKey is checked against the key query parameter before it is embedded in the forms
	APIKey string
	Logger *zap.Logger
}

type Service struct {
	app   App
	tmpl  *template.Template
	opts  Options
	roles []string

	logger *zap.Logger
}

type page struct {
	State    app.State
	Busy     bool
	Roles    []string
	Keystore bool
	Key      string
	Chain    string
	Version  string
}

func NewService(a App, o Options) (*Service, error) {
	tmpl, err := template.New("index.html").Funcs(funcs).ParseFS(templateFiles, "templates/index.html")
	if err != nil {
		return nil, err
	}

	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}

	roles := make([]string, 0, len(o.Roles))
	for name := range o.Roles {
		roles = append(roles, name)
	}
	sort.Strings(roles)

	return &Service{
		app:    a,
		tmpl:   tmpl,
		opts:   o,
		roles:  roles,
		logger: o.Logger,
	}, nil
}

// Index renders the dashboard
func (s *Service) Index(w http.ResponseWriter, r *http.Request) {
	st := s.app.Snapshot()

	p := page{
		State:    st,
		Busy:     st.Busy(),
		Roles:    s.roles,
		Keystore: s.opts.Keystore,
		Key:      s.formKey(r.URL.Query().Get(auth.FormField)),
		Chain:    s.opts.ChainName,
		Version:  gov.Version,
	}

	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, p); err != nil {
		s.logger.Error("render dashboard", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func (s *Service) formKey(key string) string {
	if s.opts.APIKey == "" || key != s.opts.APIKey {
		return ""
	}
	return key
}

func (s *Service) Connect(w http.ResponseWriter, r *http.Request) {
	if _, err := s.app.Connect(r.Context(), r.PostFormValue("passphrase")); err != nil {
		s.logger.Info("connect failed", zap.Error(err))
	}
	s.back(w, r)
}

func (s *Service) Disconnect(w http.ResponseWriter, r *http.Request) {
	if err := s.app.Disconnect(); err != nil {
		s.app.SetNotice(err)
	}
	s.back(w, r)
}

func (s *Service) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := s.app.Refresh(r.Context()); err != nil {
		s.logger.Warn("refresh failed", zap.Error(err))
	}
	s.back(w, r)
}

func (s *Service) Propose(w http.ResponseWriter, r *http.Request) {
	s.submit(w, r, func(v url.Values) (dispatch.Request, error) {
		return governance.ParseProposeRequest(v)
	})
}

func (s *Service) Vote(w http.ResponseWriter, r *http.Request) {
	s.submit(w, r, func(v url.Values) (dispatch.Request, error) {
		return governance.ParseVoteRequest(chi.URLParam(r, "id"), v)
	})
}

func (s *Service) Queue(w http.ResponseWriter, r *http.Request) {
	s.submit(w, r, func(v url.Values) (dispatch.Request, error) {
		return governance.ParseQueueRequest(chi.URLParam(r, "id"))
	})
}

func (s *Service) Execute(w http.ResponseWriter, r *http.Request) {
	s.submit(w, r, func(v url.Values) (dispatch.Request, error) {
		return governance.ParseExecuteRequest(chi.URLParam(r, "id"))
	})
}

func (s *Service) Mint(w http.ResponseWriter, r *http.Request) {
	s.submit(w, r, governance.ParseMintRequest)
}

func (s *Service) Delegate(w http.ResponseWriter, r *http.Request) {
	s.submit(w, r, func(v url.Values) (dispatch.Request, error) {
		return governance.ParseDelegateRequest(v, s.app.Snapshot().Identity)
	})
}

func (s *Service) GrantRole(w http.ResponseWriter, r *http.Request) {
	s.submit(w, r, func(v url.Values) (dispatch.Request, error) {
		return governance.ParseGrantRoleRequest(v, s.opts.Roles)
	})
}

// submit starts the action and sends the browser back to the dashboard, which
// reloads itself until the action settles
func (s *Service) submit(w http.ResponseWriter, r *http.Request, parse func(v url.Values) (dispatch.Request, error)) {
	v, err := com.ReadValues(r)
	if err != nil {
		s.app.SetNotice(err)
		s.back(w, r)
		return
	}

	req, err := parse(v)
	if err != nil {
		s.app.SetNotice(err)
		s.back(w, r)
		return
	}

	// failures are reported through the app notice
	s.app.Submit(r.Context(), req)

	s.back(w, r)
}

func (s *Service) back(w http.ResponseWriter, r *http.Request) {
	to := "/"
	if key := s.formKey(r.PostFormValue(auth.FormField)); key != "" {
		to += "?" + url.Values{auth.FormField: {key}}.Encode()
	}

	http.Redirect(w, r, to, http.StatusSeeOther)
}
