package supervisor

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/diffstorm/processWatchdog/internal/child"
	"github.com/diffstorm/processWatchdog/internal/clock"
	"github.com/diffstorm/processWatchdog/internal/config"
	"github.com/diffstorm/processWatchdog/internal/fscmd"
	"github.com/diffstorm/processWatchdog/internal/heartbeat"
	"github.com/diffstorm/processWatchdog/internal/logx"
	"github.com/diffstorm/processWatchdog/internal/reboot"
	"github.com/diffstorm/processWatchdog/internal/resource"
	"github.com/diffstorm/processWatchdog/internal/stats"
	"github.com/diffstorm/processWatchdog/internal/udpcmd"
)

const (
	tickTimeout     = 500 * time.Millisecond
	resourceSampleS = int64(60)
	statsPersistS   = int64(15 * 60)
)

// managedChild pairs one child record with its durable statistics record.
type managedChild struct {
	child *child.Child
	rec   *stats.Record
}

// Supervisor owns the child table and composes every other component on
// a 500ms tick cadence.
type Supervisor struct {
	clock     clock.Clock
	driver    *child.Driver
	sink      *fscmd.Sink
	store     *stats.Store
	sampler   *resource.Sampler
	scheduler *reboot.Scheduler
	udp       *udpcmd.Endpoint

	children []*managedChild

	sig      chan os.Signal
	sigCount SigCount

	lastResourceTick int64
	lastStatsTick    int64
}

// New builds a Supervisor from a parsed config, binding the UDP endpoint
// and loading each child's statistics record.
func New(cfg *config.Config, workDir string, clk clock.Clock) (*Supervisor, error) {
	udp, err := udpcmd.Listen(cfg.UDPPort)
	if err != nil {
		return nil, err
	}

	s := &Supervisor{
		clock:            clk,
		driver:           child.NewDriver(clk),
		sink:             fscmd.NewSink(workDir),
		store:            stats.NewStore(workDir),
		sampler:          resource.NewSampler(),
		scheduler:        reboot.NewScheduler(cfg.PeriodicReboot),
		udp:              udp,
		sig:              make(chan os.Signal, 8),
		lastResourceTick: -1,
		lastStatsTick:    -1,
	}

	for _, spec := range cfg.ToSpecs() {
		c := child.NewChild(spec)
		rec := s.store.Load(spec.Name)
		s.children = append(s.children, &managedChild{child: c, rec: rec})
	}

	signal.Notify(s.sig, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGUSR1)

	return s, nil
}

// Run drives the tick loop until an exit trigger fires, returning the
// process exit code.
func (s *Supervisor) Run() int {
	defer signal.Stop(s.sig)

	for {
		if trigger, forced := s.drainSignals(); forced {
			return trigger.Code()
		} else if trigger != ExitNone {
			s.shutdown()
			return trigger.Code()
		}

		cmd, err := s.udp.Poll(tickTimeout)
		if err != nil {
			logx.Error("udp", "fatal: %v", err)
			s.shutdown()
			return ExitRestartMe.Code()
		}
		if cmd != nil {
			s.applyCommand(cmd)
		}

		uptimeSeconds := int64(s.clock.Monotonic() / time.Second)
		s.tickChildren(uptimeSeconds)

		if g := s.sink.PollGlobal(); g != fscmd.GlobalNone {
			code := globalExitCode(g)
			s.shutdown()
			return code
		}

		if reboot.ShouldCheck(uptimeSeconds) {
			if s.scheduler.Fire(uptimeSeconds/60, s.clock.Now()) {
				s.shutdown()
				return ExitReboot.Code()
			}
		}
	}
}

// drainSignals consumes all pending signals without blocking. forced is
// true only on the USR1-stuck case, which bypasses shutdown entirely.
func (s *Supervisor) drainSignals() (trigger ExitTrigger, forced bool) {
	for {
		select {
		case sig := <-s.sig:
			switch sig {
			case syscall.SIGINT, syscall.SIGTERM:
				return ExitRestartMe, false
			case syscall.SIGQUIT:
				return ExitReboot, false
			case syscall.SIGUSR1:
				if s.sigCount.Incr() {
					logx.Error("signal", "USR1 received %d times, exiting immediately without cleanup", StuckThreshold)
					return ExitNormal, true
				}
				return ExitNormal, false
			}
		default:
			return ExitNone, false
		}
	}
}

func globalExitCode(g fscmd.GlobalCommand) int {
	switch g {
	case fscmd.GlobalStop:
		return ExitNormal.Code()
	case fscmd.GlobalRestart:
		return ExitRestartMe.Code()
	case fscmd.GlobalReboot:
		return ExitReboot.Code()
	default:
		return ExitNormal.Code()
	}
}

// applyCommand handles one decoded UDP command.
func (s *Supervisor) applyCommand(cmd *udpcmd.Command) {
	switch cmd.Type {
	case udpcmd.CmdHeartbeat:
		now := s.clock.Monotonic()
		for _, mc := range s.children {
			if !mc.child.Started || mc.child.PID != cmd.PID {
				continue
			}
			res := heartbeat.Record(mc.child, now)
			switch res.Kind {
			case heartbeat.SampleFirst:
				mc.rec.OnFirstHeartbeat(res.Elapsed)
			case heartbeat.SampleInter:
				mc.rec.OnHeartbeat(res.Elapsed)
			}
			return
		}
	default:
		// CmdStartApp/CmdStopApp/CmdRestartApp/CmdUnknown: reserved or
		// already logged by the decoder; the loop takes no action.
	}
}

// tickChildren drives every child through its lifecycle for one tick, in
// declaration order.
func (s *Supervisor) tickChildren(uptimeSeconds int64) {
	now := s.clock.Monotonic()
	wallNow := s.clock.Now()

	sampleNow := uptimeSeconds > 0 && uptimeSeconds%resourceSampleS == 0 && uptimeSeconds != s.lastResourceTick
	persistNow := uptimeSeconds > 0 && uptimeSeconds%statsPersistS == 0 && uptimeSeconds != s.lastStatsTick

	for _, mc := range s.children {
		c := mc.child
		name := c.Spec.Name
		tag := "child:" + name

		if c.Started {
			running := s.driver.IsRunning(c)
			timedOut := running && heartbeat.TimedOut(c, now)
			restartRequested := running && !timedOut && s.sink.RestartRequested(name)
			restarting := !running || timedOut || restartRequested

			if sampleNow {
				s.sampleResource(mc)
			}
			if persistNow {
				s.persist(name, mc.rec, s.deriveState(mc, restarting))
			}

			switch {
			case !running:
				mc.rec.OnCrash(wallNow)
				s.restart(mc)
			case timedOut:
				mc.rec.OnHeartbeatReset(wallNow)
				s.restart(mc)
			case s.sink.StopLatched(name):
				if err := s.driver.Terminate(c); err != nil {
					logx.Error(tag, "terminate: %v", err)
				}
			case restartRequested:
				s.restart(mc)
				_ = s.sink.ClearRestart(name)
			}
			continue
		}

		if !s.sink.StopLatched(name) && (s.sink.StartRequested(name) || s.startDelayElapsed(c, now)) {
			if err := s.driver.Spawn(c); err != nil {
				logx.Error(tag, "spawn: %v", err)
				continue
			}
			mc.rec.OnSpawnSuccess(wallNow)
			_ = s.sink.ClearStart(name)
			_ = s.sink.ClearRestart(name)
		}
	}

	if sampleNow {
		s.lastResourceTick = uptimeSeconds
	}
	if persistNow {
		s.lastStatsTick = uptimeSeconds
	}
}

func (s *Supervisor) startDelayElapsed(c *child.Child, now time.Duration) bool {
	return now >= time.Duration(c.Spec.StartDelayS)*time.Second
}

func (s *Supervisor) restart(mc *managedChild) {
	tag := "child:" + mc.child.Spec.Name
	if err := s.driver.Restart(mc.child); err != nil {
		logx.Error(tag, "restart: %v", err)
		return
	}
	mc.rec.OnSpawnSuccess(s.clock.Now())
}

func (s *Supervisor) sampleResource(mc *managedChild) {
	if mc.child.PID <= 0 {
		return
	}
	cpuPct, rssKB, ok := s.sampler.Sample(mc.child.PID)
	if !ok {
		return
	}
	mc.rec.OnResourceSample(cpuPct, rssKB)
}

func (s *Supervisor) persist(name string, rec *stats.Record, state child.State) {
	if err := s.store.Persist(name, rec, state.String()); err != nil {
		logx.Error("stats", "%s: %v", name, err)
	}
}

// deriveState derives a child's externally observable lifecycle state from
// supervisor-loop context; Child itself stores none of this.
func (s *Supervisor) deriveState(mc *managedChild, restarting bool) child.State {
	c := mc.child
	if !c.Started {
		if s.sink.StopLatched(c.Spec.Name) {
			return child.StateIdle
		}
		return child.StateWaitingToStart
	}
	if restarting {
		return child.StateRestarting
	}
	return child.StateRunning
}

// shutdown stops the UDP endpoint, persists every child's statistics, and
// terminates every running child, in that order. USR1 deliveries that arrive
// meanwhile keep counting toward StuckThreshold; the StuckThreshold-th one
// exits the process at once, without finishing the cleanup.
func (s *Supervisor) shutdown() {
	go func() {
		for sig := range s.sig {
			if sig == syscall.SIGUSR1 && s.sigCount.Incr() {
				logx.Error("signal", "USR1 received %d times, exiting immediately without cleanup", StuckThreshold)
				os.Exit(ExitNormal.Code())
			}
		}
	}()

	_ = s.udp.Close()

	for _, mc := range s.children {
		s.persist(mc.child.Spec.Name, mc.rec, s.deriveState(mc, false))
	}
	for _, mc := range s.children {
		if !mc.child.Started {
			continue
		}
		if err := s.driver.Terminate(mc.child); err != nil {
			logx.Error("child:"+mc.child.Spec.Name, "shutdown terminate: %v", err)
		}
	}
}
