// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FFmpegGUI - FFmpeg 视频批量处理工具
//
// Package process wraps exec.Cmd for one FFmpeg invocation. A process
// runs exactly once: Run blocks until the child exits, a dedicated
// goroutine streams stderr into the parser meanwhile.

package process

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"sync"
	"syscall"
	"time"
	"unicode/utf8"
)

// Process represents one invocation of the external tool
type Process interface {
	Run() error
	Kill(wait bool) error
	Status() Status
	IsRunning() bool
}

// Config for a process
type Config struct {
	Binary        string
	Args          []string
	Parser        Parser
	OnStart       func()
	OnExit        func()
	OnStateChange func(from, to string)
	Logger        Logger
}

// Status of a process
type Status struct {
	State    string
	States   States
	Duration time.Duration
	Time     time.Time
	CPU      struct {
		Current float64
		Limit   float64
	}
	Memory struct {
		Current uint64
		Limit   uint64
	}
}

// States cumulative counts
type States struct {
	Finished  uint64
	Starting  uint64
	Running   uint64
	Finishing uint64
	Failed    uint64
	Killed    uint64
}

// Logger interface
type Logger interface {
	Info(format string, args ...interface{})
	Error(format string, args ...interface{})
	Debug(format string, args ...interface{})
}

type stateType string

const (
	stateFinished  stateType = "finished"
	stateStarting  stateType = "starting"
	stateRunning   stateType = "running"
	stateFinishing stateType = "finishing"
	stateFailed    stateType = "failed"
	stateKilled    stateType = "killed"
)

func (s stateType) String() string { return string(s) }

func (s stateType) IsRunning() bool {
	return s == stateStarting || s == stateRunning || s == stateFinishing
}

type process struct {
	binary string
	args   []string
	cmd    *exec.Cmd
	pid    int32
	stderr io.ReadCloser

	state struct {
		state  stateType
		time   time.Time
		states States
		lock   sync.Mutex
	}
	run struct {
		started bool
		killed  bool
		err     error
		done    chan struct{}
		lock    sync.Mutex
	}
	killTimer     *time.Timer
	killTimerLock sync.Mutex
	parser        Parser
	logger        Logger
	limits        Limiter
	callbacks     struct {
		onStart       func()
		onExit        func()
		onStateChange func(from, to string)
		lock          sync.Mutex
	}
}

// New creates a new process
func New(config Config) (Process, error) {
	p := &process{
		binary: config.Binary,
		args:   config.Args,
		parser: config.Parser,
		logger: config.Logger,
		limits: NewSysLimiter(),
	}

	if len(p.binary) == 0 {
		return nil, fmt.Errorf("no valid binary given")
	}

	if p.parser == nil {
		p.parser = &nullParser{}
	}

	if p.logger == nil {
		p.logger = &nopLogger{}
	}

	p.initState(stateFinished)
	p.run.done = make(chan struct{})
	p.callbacks.onStart = config.OnStart
	p.callbacks.onExit = config.OnExit
	p.callbacks.onStateChange = config.OnStateChange

	return p, nil
}

func (p *process) initState(state stateType) {
	p.state.lock.Lock()
	defer p.state.lock.Unlock()
	p.state.state = state
	p.state.time = time.Now()
}

func (p *process) setState(state stateType) error {
	p.state.lock.Lock()
	defer p.state.lock.Unlock()

	prevState := p.state.state
	failed := false

	switch p.state.state {
	case stateFinished:
		if state == stateStarting {
			p.state.state = state
			p.state.states.Starting++
		} else {
			failed = true
		}
	case stateStarting:
		switch state {
		case stateFinishing, stateRunning, stateFailed:
			p.state.state = state
			if state == stateFinishing {
				p.state.states.Finishing++
			} else if state == stateRunning {
				p.state.states.Running++
			} else {
				p.state.states.Failed++
			}
		default:
			failed = true
		}
	case stateRunning:
		switch state {
		case stateFinished, stateFinishing, stateFailed, stateKilled:
			p.state.state = state
			switch state {
			case stateFinished:
				p.state.states.Finished++
			case stateFinishing:
				p.state.states.Finishing++
			case stateFailed:
				p.state.states.Failed++
			case stateKilled:
				p.state.states.Killed++
			}
		default:
			failed = true
		}
	case stateFinishing:
		switch state {
		case stateFinished, stateFailed, stateKilled:
			p.state.state = state
			if state == stateFinished {
				p.state.states.Finished++
			} else if state == stateFailed {
				p.state.states.Failed++
			} else {
				p.state.states.Killed++
			}
		default:
			failed = true
		}
	case stateFailed, stateKilled:
		failed = true
	default:
		return fmt.Errorf("unhandled state: %s", p.state.state)
	}

	if failed {
		return fmt.Errorf("can't change from %s to %s", p.state.state, state)
	}

	p.state.time = time.Now()
	if p.callbacks.onStateChange != nil {
		go p.callbacks.onStateChange(prevState.String(), p.state.state.String())
	}
	return nil
}

func (p *process) getState() stateType {
	p.state.lock.Lock()
	defer p.state.lock.Unlock()
	return p.state.state
}

func (p *process) isRunning() bool {
	return p.getState().IsRunning()
}

func (p *process) Status() Status {
	cpu, memory := p.limits.Current()
	cpuLimit, memoryLimit := p.limits.Limits()

	p.state.lock.Lock()
	stateTime := p.state.time
	stateString := p.state.state.String()
	states := p.state.states
	p.state.lock.Unlock()

	s := Status{
		State:    stateString,
		States:   states,
		Duration: time.Since(stateTime),
		Time:     stateTime,
	}
	s.CPU.Current = cpu
	s.CPU.Limit = cpuLimit
	s.Memory.Current = memory
	s.Memory.Limit = memoryLimit
	return s
}

func (p *process) IsRunning() bool {
	return p.isRunning()
}

// Run starts the child and blocks until it exits. A second call
// returns ErrAlreadyStarted.
func (p *process) Run() error {
	p.run.lock.Lock()
	if p.run.started {
		p.run.lock.Unlock()
		return ErrAlreadyStarted
	}
	p.run.started = true
	p.run.lock.Unlock()

	if err := p.start(); err != nil {
		return err
	}

	<-p.run.done

	p.run.lock.Lock()
	defer p.run.lock.Unlock()
	return p.run.err
}

func (p *process) start() error {
	p.setState(stateStarting)

	var err error
	p.cmd = exec.Command(p.binary, p.args...)

	p.stderr, err = p.cmd.StderrPipe()
	if err != nil {
		p.setState(stateFailed)
		p.parser.Parse(err.Error())
		return fmt.Errorf("启动FFmpeg失败: %w", err)
	}

	if err := p.cmd.Start(); err != nil {
		p.setState(stateFailed)
		p.parser.Parse(err.Error())
		return fmt.Errorf("启动FFmpeg失败: %w", err)
	}

	p.pid = int32(p.cmd.Process.Pid)
	p.limits.Start(int(p.pid))

	p.setState(stateRunning)

	if p.callbacks.onStart != nil {
		go p.callbacks.onStart()
	}

	go p.reader()

	return nil
}

// Kill sends an interrupt to the running child, escalating to a hard
// kill after 5 seconds. With wait it blocks until the child exited.
func (p *process) Kill(wait bool) error {
	if state := p.getState(); state != stateRunning && state != stateFinishing {
		return nil
	}

	p.run.lock.Lock()
	p.run.killed = true
	p.run.lock.Unlock()

	if p.getState() == stateFinishing {
		if wait {
			<-p.run.done
		}
		return nil
	}
	p.setState(stateFinishing)

	var err error
	if runtime.GOOS == "windows" {
		err = p.cmd.Process.Kill()
	} else {
		err = p.cmd.Process.Signal(os.Interrupt)
		if err != nil {
			err = p.cmd.Process.Kill()
		} else {
			p.killTimerLock.Lock()
			p.killTimer = time.AfterFunc(5*time.Second, func() {
				p.cmd.Process.Kill()
			})
			p.killTimerLock.Unlock()
		}
	}

	if err != nil {
		p.parser.Parse(err.Error())
		return err
	}

	if wait {
		<-p.run.done
	}
	return nil
}

func (p *process) wasKilled() bool {
	p.run.lock.Lock()
	defer p.run.lock.Unlock()
	return p.run.killed
}

func (p *process) reader() {
	scanner := bufio.NewScanner(p.stderr)
	scanner.Split(scanLine)

	p.parser.ResetStats()
	p.parser.ResetLog()

	for scanner.Scan() {
		p.parser.Parse(scanner.Text())
	}

	p.waiter()
}

func (p *process) waiter() {
	var result error

	if err := p.cmd.Wait(); err != nil {
		if exiterr, ok := err.(*exec.ExitError); ok {
			status := exiterr.Sys().(syscall.WaitStatus)
			if status.Exited() {
				// ffmpeg 收到 SIGINT 后以退出码 255 退出
				if p.wasKilled() && status.ExitStatus() == 255 {
					p.setState(stateKilled)
					result = ErrKilled
				} else {
					p.setState(stateFailed)
					result = &ExitError{Code: status.ExitStatus()}
				}
			} else {
				p.setState(stateKilled)
				result = ErrKilled
			}
		} else {
			p.setState(stateFailed)
			result = fmt.Errorf("等待FFmpeg进程失败: %w", err)
		}
	} else {
		p.setState(stateFinished)
	}

	p.limits.Stop()

	p.killTimerLock.Lock()
	if p.killTimer != nil {
		p.killTimer.Stop()
		p.killTimer = nil
	}
	p.killTimerLock.Unlock()

	p.run.lock.Lock()
	p.run.err = result
	p.run.lock.Unlock()
	close(p.run.done)

	p.callbacks.lock.Lock()
	if p.callbacks.onExit != nil {
		go p.callbacks.onExit()
	}
	p.callbacks.lock.Unlock()
}

// scanLine splits on \n and \r so FFmpeg progress lines, which are
// rewritten in place with \r, arrive as separate tokens.
func scanLine(data []byte, atEOF bool) (advance int, token []byte, err error) {
	start := 0
	for start < len(data) {
		r, w := utf8.DecodeRune(data[start:])
		if r != '\n' && r != '\r' {
			break
		}
		start += w
	}

	for i := start; i < len(data); {
		r, w := utf8.DecodeRune(data[i:])
		if r == '\n' || r == '\r' {
			return i + w, data[start:i], nil
		}
		i += w
	}

	if atEOF && len(data) > start {
		return len(data), data[start:], nil
	}
	return start, nil, nil
}

type nullParser struct{}

func (p *nullParser) Parse(line string) uint64 { return 1 }
func (p *nullParser) ResetStats()              {}
func (p *nullParser) ResetLog()                {}
func (p *nullParser) Log() []Line              { return nil }

type nopLogger struct{}

func (l *nopLogger) Info(format string, args ...interface{})  {}
func (l *nopLogger) Error(format string, args ...interface{}) {}
func (l *nopLogger) Debug(format string, args ...interface{}) {}
