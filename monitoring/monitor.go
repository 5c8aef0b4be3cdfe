// Package monitoring turns a live dispatcher into a small HTTP server for
// external inspection.
package monitoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/pkg/browser"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/kestrellab/relay/dispatch"
)

// portEnvVar names the environment variable that sets the monitor port when
// WithPortNumber is not used. A .env file in the working directory is
// honored.
const portEnvVar = "RELAY_MONITOR_PORT"

// Monitor exposes the state of a dispatcher over HTTP.
type Monitor struct {
	dispatcher *dispatch.Dispatcher
	portNumber int
	url        string

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// NewMonitor creates a new Monitor.
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// RegisterDispatcher registers the dispatcher to be monitored.
func (m *Monitor) RegisterDispatcher(d *dispatch.Dispatcher) {
	m.dispatcher = d
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        dispatch.GetIDGenerator().Generate(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar from the page.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars)-1)
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

// StartServer starts the monitor as a web server. The port comes from
// WithPortNumber, then the RELAY_MONITOR_PORT environment variable, then a
// random free port.
func (m *Monitor) StartServer() {
	r := m.router()

	listener, err := net.Listen("tcp", m.listenAddress())
	dieOnErr(err)

	port := listener.Addr().(*net.TCPAddr).Port
	m.url = fmt.Sprintf("http://localhost:%d", port)

	fmt.Fprintf(os.Stderr, "Monitoring dispatcher with %s\n", m.url)

	go func() {
		err = http.Serve(listener, r)
		dieOnErr(err)
	}()
}

// OpenInBrowser opens the monitor page in the default browser. StartServer
// must have been called.
func (m *Monitor) OpenInBrowser() {
	if m.url == "" {
		log.Panic("monitor server is not started")
	}

	err := browser.OpenURL(m.url)
	dieOnErr(err)
}

func (m *Monitor) router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/types", m.listTypes)
	r.HandleFunc("/api/type/{id}", m.listTypeHandlers)
	r.HandleFunc("/api/queue", m.queueLength)
	r.HandleFunc("/api/dispatcher", m.serializeDispatcher)
	r.HandleFunc("/api/drain", m.drain)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)

	return r
}

func (m *Monitor) listenAddress() string {
	if m.portNumber == 0 {
		_ = godotenv.Load()

		if p, err := strconv.Atoi(os.Getenv(portEnvVar)); err == nil {
			m.portNumber = p
		}
	}

	if m.portNumber > 1000 {
		return ":" + strconv.Itoa(m.portNumber)
	}

	return ":0"
}

type typeRsp struct {
	TypeID       uint32 `json:"type_id"`
	HandlerCount int    `json:"handler_count"`
}

func (m *Monitor) listTypes(w http.ResponseWriter, _ *http.Request) {
	types := m.dispatcher.RegisteredTypes()

	rsp := make([]typeRsp, 0, len(types))
	for _, t := range types {
		rsp = append(rsp, typeRsp{
			TypeID:       uint32(t),
			HandlerCount: m.dispatcher.HandlerCount(t),
		})
	}

	writeJSON(w, rsp)
}

func (m *Monitor) listTypeHandlers(w http.ResponseWriter, r *http.Request) {
	idString := mux.Vars(r)["id"]

	id, err := strconv.ParseUint(idString, 0, 32)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Invalid type id: %s", idString)
		return
	}

	infos := m.dispatcher.HandlerInfos(dispatch.TypeID(id))
	if infos == nil {
		w.WriteHeader(http.StatusNotFound)
		_, err := w.Write([]byte("Type not found"))
		dieOnErr(err)
		return
	}

	writeJSON(w, infos)
}

func (m *Monitor) queueLength(w http.ResponseWriter, _ *http.Request) {
	fmt.Fprintf(w, "{\"pending\":%d}", m.dispatcher.QueueLen())
}

func (m *Monitor) serializeDispatcher(w http.ResponseWriter, _ *http.Request) {
	serializer := goseth.NewSerializer()
	serializer.SetRoot(m.dispatcher)
	serializer.SetMaxDepth(1)
	err := serializer.Serialize(w)

	dieOnErr(err)
}

func (m *Monitor) drain(_ http.ResponseWriter, _ *http.Request) {
	go func() {
		err := m.dispatcher.ProcessEvents()
		if err != nil {
			panic(err)
		}
	}()
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	writeJSON(w, m.progressBars)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
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

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	dieOnErr(err)

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, prof)
}

func writeJSON(w http.ResponseWriter, v any) {
	bytes, err := json.Marshal(v)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
