// Package monitoring serves a translation engine over HTTP so that a browser
// can drive it step by step.
package monitoring

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/sarchlab/vmsim/display"
	"github.com/sarchlab/vmsim/mem/vm/replacement"
	"github.com/sarchlab/vmsim/monitoring/web"
	"github.com/sarchlab/vmsim/sim/hooking"
	"github.com/sarchlab/vmsim/translator"
)

// MaxRandomAddresses is the largest count accepted by one random address
// request.
const MaxRandomAddresses = 1024

var errNoSystem = errors.New(
	"simulator not initialized, generate the system first")

// Server holds at most one engine and exposes it with a JSON API. All the
// requests are serialized.
type Server struct {
	mu       sync.Mutex
	engine   *translator.Engine
	progress *ProgressBar

	portNumber  int
	openBrowser bool
	randSource  func() rand.Source
	hooks       []hooking.Hook
}

// NewServer creates a Server without an engine.
func NewServer() *Server {
	return &Server{}
}

// WithPortNumber sets the port number of the server. Ports below 1000 are
// replaced by a random port.
func (s *Server) WithPortNumber(portNumber int) *Server {
	if portNumber != 0 && portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	s.portNumber = portNumber

	return s
}

// WithBrowser makes StartServer open the page in a browser.
func (s *Server) WithBrowser(open bool) *Server {
	s.openBrowser = open
	return s
}

// WithRandSource sets how every new engine gets its random source.
func (s *Server) WithRandSource(newSource func() rand.Source) *Server {
	s.randSource = newSource
	return s
}

// WithHook attaches a hook to every engine the server creates. It panics if
// the hook is already attached.
func (s *Server) WithHook(h hooking.Hook) *Server {
	base := hooking.NewHookableBase()
	for _, hook := range s.hooks {
		base.AcceptHook(hook)
	}
	base.AcceptHook(h)

	s.hooks = append(s.hooks, h)

	return s
}

// Handler returns the router of the server.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(recoverMiddleware)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/system", s.generateSystem).Methods(http.MethodPost)
	api.HandleFunc("/system", s.dropSystem).Methods(http.MethodDelete)
	api.HandleFunc("/reset", s.reset).Methods(http.MethodPost)
	api.HandleFunc("/addresses", s.addAddress).Methods(http.MethodPost)
	api.HandleFunc("/addresses/random", s.randomAddresses).
		Methods(http.MethodPost)
	api.HandleFunc("/step", s.nextStep).Methods(http.MethodPost)
	api.HandleFunc("/address", s.nextAddress).Methods(http.MethodPost)
	api.HandleFunc("/state", s.state).Methods(http.MethodGet)
	api.HandleFunc("/progress", s.listProgress).Methods(http.MethodGet)
	api.HandleFunc("/engine", s.dumpEngine).Methods(http.MethodGet)
	api.HandleFunc("/resource", s.listResources).Methods(http.MethodGet)
	api.HandleFunc("/profile", s.collectProfile).Methods(http.MethodGet)

	r.PathPrefix("/").Handler(http.FileServer(web.GetAssets()))

	return r
}

// StartServer starts serving in the background and returns the port.
func (s *Server) StartServer() int {
	actualPort := ":0"
	if s.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(s.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	port := listener.Addr().(*net.TCPAddr).Port
	url := fmt.Sprintf("http://localhost:%d", port)

	fmt.Fprintf(os.Stderr, "Monitoring simulation with %s\n", url)

	handler := s.Handler()
	go func() {
		err := http.Serve(listener, handler)
		dieOnErr(err)
	}()

	if s.openBrowser {
		err = browser.OpenURL(url)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open browser: %v\n", err)
		}
	}

	return port
}

type systemReq struct {
	VirtualAddressWidth   json.Number `json:"virtual_address_width"`
	TLBAssociativity      json.Number `json:"tlb_associativity"`
	PageReplacementPolicy string      `json:"page_replacement_policy"`
}

func (req systemReq) config() (translator.Config, error) {
	var missing []string
	if req.VirtualAddressWidth == "" {
		missing = append(missing, "virtual_address_width")
	}
	if req.TLBAssociativity == "" {
		missing = append(missing, "tlb_associativity")
	}
	if req.PageReplacementPolicy == "" {
		missing = append(missing, "page_replacement_policy")
	}
	if len(missing) > 0 {
		return translator.Config{}, fmt.Errorf("%w: missing input: %v",
			translator.ErrInvalidConfig, missing)
	}

	width, err := req.VirtualAddressWidth.Int64()
	if err != nil {
		return translator.Config{}, fmt.Errorf(
			"%w: virtual address width must be an integer",
			translator.ErrInvalidConfig)
	}

	ways, err := req.TLBAssociativity.Int64()
	if err != nil {
		return translator.Config{}, fmt.Errorf(
			"%w: TLB associativity must be an integer",
			translator.ErrInvalidConfig)
	}

	policy, err := replacement.ParseKind(req.PageReplacementPolicy)
	if err != nil {
		return translator.Config{}, fmt.Errorf("%w: %w",
			translator.ErrInvalidConfig, err)
	}

	return translator.Config{
		Policy:           policy,
		VASWidth:         int(width),
		TLBAssociativity: int(ways),
	}, nil
}

func (s *Server) generateSystem(w http.ResponseWriter, r *http.Request) {
	req := systemReq{}

	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid input format")
		return
	}

	config, err := req.config()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	builder := translator.MakeBuilder().WithConfig(config)
	if s.randSource != nil {
		builder = builder.WithRandSource(s.randSource())
	}

	engine, err := builder.Build()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	for _, h := range s.hooks {
		engine.AcceptHook(h)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.engine = engine
	s.progress = newProgressBar("Addresses translated")

	writeJSON(w, systemRsp{
		Message: "System successfully generated.",
		Tables:  display.MakeTables(engine),
	})
}

func (s *Server) dropSystem(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.engine = nil
	s.progress = nil

	writeJSON(w, messageRsp{Message: "System reset successfully."})
}

func (s *Server) reset(w http.ResponseWriter, _ *http.Request) {
	s.withEngine(w, func(e *translator.Engine) {
		e.Reset()
		s.progress = newProgressBar("Addresses translated")

		writeJSON(w, messageRsp{Message: "Engine reset successfully."})
	})
}

type addressReq struct {
	Address string `json:"address"`
}

func (s *Server) addAddress(w http.ResponseWriter, r *http.Request) {
	req := addressReq{}

	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil || req.Address == "" {
		writeError(w, http.StatusBadRequest, "missing address in request")
		return
	}

	s.withEngine(w, func(e *translator.Engine) {
		err := e.AddAddress(req.Address)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		writeJSON(w, sequenceRsp{Sequence: formatSequence(e)})
	})
}

func (s *Server) randomAddresses(w http.ResponseWriter, r *http.Request) {
	count := 1

	countStr := r.URL.Query().Get("count")
	if countStr != "" {
		n, err := strconv.Atoi(countStr)
		if err != nil || n <= 0 || n > MaxRandomAddresses {
			writeError(w, http.StatusBadRequest,
				fmt.Sprintf("invalid count %q, must be between 1 and %d",
					countStr, MaxRandomAddresses))
			return
		}

		count = n
	}

	s.withEngine(w, func(e *translator.Engine) {
		e.GenerateRandomAddresses(count)

		writeJSON(w, sequenceRsp{
			Message:  "Address sequence uploaded successfully.",
			Sequence: formatSequence(e),
		})
	})
}

func (s *Server) nextStep(w http.ResponseWriter, _ *http.Request) {
	s.withEngine(w, func(e *translator.Engine) {
		report := e.ProcessNextStep()
		writeJSON(w, s.makeStepRsp(e, report.Complete, true))
	})
}

func (s *Server) nextAddress(w http.ResponseWriter, _ *http.Request) {
	s.withEngine(w, func(e *translator.Engine) {
		reports := e.ProcessNextAddress()
		complete := len(reports) == 1 && reports[0].Complete
		writeJSON(w, s.makeStepRsp(e, complete, true))
	})
}

func (s *Server) state(w http.ResponseWriter, _ *http.Request) {
	s.withEngine(w, func(e *translator.Engine) {
		rsp := s.makeStepRsp(e, e.Done(), false)
		tables := display.MakeTables(e)
		rsp.Tables = &tables

		writeJSON(w, rsp)
	})
}

func (s *Server) listProgress(w http.ResponseWriter, _ *http.Request) {
	s.withEngine(w, func(e *translator.Engine) {
		s.progress.update(e)
		writeJSON(w, []*ProgressBar{s.progress})
	})
}

func (s *Server) dumpEngine(w http.ResponseWriter, _ *http.Request) {
	s.withEngine(w, func(e *translator.Engine) {
		w.Header().Set("Content-Type", "application/json")

		serializer := goseth.NewSerializer()
		serializer.SetRoot(e)
		serializer.SetMaxDepth(1)
		err := serializer.Serialize(w)

		dieOnErr(err)
	})
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (s *Server) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	})
}

func (s *Server) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	dieOnErr(err)

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, prof)
}

func (s *Server) withEngine(
	w http.ResponseWriter,
	f func(e *translator.Engine),
) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.engine == nil {
		writeError(w, http.StatusBadRequest, errNoSystem.Error())
		return
	}

	f(s.engine)
}

func recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("panic serving %s %s: %v", r.Method, r.URL, err)
				writeError(w, http.StatusInternalServerError, fmt.Sprint(err))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
