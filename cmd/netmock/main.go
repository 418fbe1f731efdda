package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/tidwall/gjson"

	"netmock/internal/config"
	"netmock/internal/intercept"
	"netmock/internal/logger"
	"netmock/internal/replay"
	"netmock/internal/rules"
	"netmock/internal/service"
	"netmock/pkg/domain"
	"netmock/pkg/traffic"
)

// netmock replays a JSON scenario file: registers its rules, issues its
// requests through the interception point and prints every delivery.
//
// Scenario shape:
//
//	{
//	  "rules": [
//	    {"type": "once",    "url": "...", "status": 200, "body": "...", "delayMS": 5},
//	    {"type": "always",  "url": "...", "headers": {"X-A": "1"}, "body": "..."},
//	    {"type": "fail",    "url": "...", "error": "connection reset"},
//	    {"type": "pattern", "pattern": "product/([0-9]+)", "template": "{\"id\":\"\"}", "paths": ["id"]}
//	  ],
//	  "requests": [{"method": "GET", "url": "..."}]
//	}
func main() {
	var (
		scenarioPath = flag.String("scenario", "", "path to the scenario JSON file")
		dbPath       = flag.String("db", "", "sqlite journal DSN (empty disables the journal)")
		logLevel     = flag.String("log-level", "info", "log level")
		logFile      = flag.String("log-file", "", "also log to this rotated file")
		requireMocks = flag.Bool("require-mocks", false, "reject requests no rule matches")
		wait         = flag.Duration("wait", 5*time.Second, "how long to wait for deliveries")
	)
	flag.Parse()

	cfg := config.NewConfig()
	cfg.Log.Level = *logLevel
	cfg.Sqlite.Dsn = *dbPath

	writers := []io.Writer{logger.Console()}
	if *logFile != "" {
		writers = append(writers, logger.File(*logFile))
	}
	log := logger.New(cfg.Log.Level, writers...)

	if *scenarioPath == "" {
		fmt.Fprintln(os.Stderr, "usage: netmock -scenario scenario.json")
		os.Exit(2)
	}
	raw, err := os.ReadFile(*scenarioPath)
	if err != nil {
		log.Err(err, "read scenario")
		os.Exit(1)
	}
	if !gjson.ValidBytes(raw) {
		log.Error("scenario is not valid JSON", "path", *scenarioPath)
		os.Exit(1)
	}
	doc := gjson.ParseBytes(raw)

	svc := service.New(service.Options{Config: cfg, Logger: log})
	defer svc.Close()
	svc.SetVerbosity(domain.VerbosityAll)
	if *requireMocks {
		svc.SetEvaluator(func(*traffic.Request) domain.Decision { return domain.Reject })
	}

	if err := register(svc, doc, log); err != nil {
		log.Err(err, "register rules")
		os.Exit(1)
	}

	obs := &printObserver{log: log}
	svc.SetObserver(obs)

	started := 0
	for _, r := range doc.Get("requests").Array() {
		req := traffic.NewRequest(r.Get("method").String(), r.Get("url").String())
		task, err := svc.CreateTask(req)
		var unmocked *intercept.UnmockedError
		switch {
		case errors.As(err, &unmocked):
			log.Error("rejected", "method", req.Method, "url", req.URL)
		case err != nil:
			log.Err(err, "create task", "url", req.URL)
		case task == nil:
			log.Info("passed through", "method", req.Method, "url", req.URL)
		default:
			obs.expect()
			task.Start()
			started++
		}
	}

	if !obs.wait(*wait) {
		log.Warn("timed out waiting for deliveries", "started", started)
		os.Exit(1)
	}

	stats := svc.Stats()
	log.Info("done", "requests", stats.Total, "matched", stats.Matched, "started", started)
}

func register(svc *service.Service, doc gjson.Result, log logger.Logger) error {
	for _, r := range doc.Get("rules").Array() {
		delay := time.Duration(r.Get("delayMS").Int()) * time.Millisecond
		headers := map[string]string{}
		r.Get("headers").ForEach(func(k, v gjson.Result) bool {
			headers[k.String()] = v.String()
			return true
		})
		status := int(r.Get("status").Int())
		body := []byte(r.Get("body").String())

		switch kind := r.Get("type").String(); kind {
		case "once":
			req := traffic.NewRequest("", r.Get("url").String())
			svc.MockOnce(req, traffic.Respond(status, headers, body), delay)
		case "always":
			req := traffic.NewRequest("", r.Get("url").String())
			svc.MockAlways(req, traffic.Respond(status, headers, body), delay)
		case "fail":
			req := traffic.NewRequest("", r.Get("url").String())
			svc.MockAlways(req, traffic.Fail(errors.New(r.Get("error").String())), delay)
		case "pattern":
			var paths []string
			for _, p := range r.Get("paths").Array() {
				paths = append(paths, p.String())
			}
			gen, err := rules.JSONTemplate(status, r.Get("template").String(), paths...)
			if err != nil {
				return err
			}
			if _, err := svc.MockPatternFunc(r.Get("pattern").String(), gen, delay); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown rule type %q", kind)
		}
		log.Debug("rule registered", "type", r.Get("type").String())
	}
	return nil
}

// printObserver logs each delivery and counts completions.
type printObserver struct {
	log logger.Logger
	wg  sync.WaitGroup
}

func (o *printObserver) expect() { o.wg.Add(1) }

func (o *printObserver) wait(d time.Duration) bool {
	done := make(chan struct{})
	go func() {
		o.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(d):
		return false
	}
}

func (o *printObserver) OnResponse(id replay.TaskID, status int, headers traffic.Header) {
	o.log.Info("response", "task", int64(id), "status", status, "headers", len(headers))
}

func (o *printObserver) OnData(id replay.TaskID, body []byte) {
	o.log.Info("data", "task", int64(id), "bytes", len(body), "body", string(body))
}

func (o *printObserver) OnComplete(id replay.TaskID, err error) {
	if err != nil {
		o.log.Err(err, "complete", "task", int64(id))
	} else {
		o.log.Info("complete", "task", int64(id))
	}
	o.wg.Done()
}
