// Package feed keeps a live kline stream connected and forwards closed
// bars to its consumers.
package feed

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/rustyeddy/trendchart/market"
)

const (
	DefaultURL            = "wss://stream.binance.com:9443/ws/btcusdt@kline_1m"
	DefaultReconnectDelay = 5 * time.Second
)

var (
	ErrConnection       = errors.New("feed: connection error")
	ErrMalformedMessage = errors.New("feed: malformed stream message")
)

type State int

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "disconnected"
	}
}

type Options struct {
	URL            string
	ReconnectDelay time.Duration
	Dialer         Dialer
	Scheduler      Scheduler
	Logger         logrus.FieldLogger
}

// Controller owns one stream connection at a time. After any close it
// schedules a single reconnect; Disconnect cancels everything.
type Controller struct {
	url    string
	dialer Dialer
	sched  Scheduler
	policy backoff.BackOff
	log    logrus.FieldLogger

	mu        sync.Mutex
	state     State
	session   uint64
	conn      Conn
	retry     Timer
	stopped   bool
	ctx       context.Context
	cancel    context.CancelFunc
	consumers []func(market.Candle)
}

func New(opts Options) *Controller {
	if opts.URL == "" {
		opts.URL = DefaultURL
	}
	if opts.ReconnectDelay <= 0 {
		opts.ReconnectDelay = DefaultReconnectDelay
	}
	if opts.Dialer == nil {
		opts.Dialer = WebsocketDialer{}
	}
	if opts.Scheduler == nil {
		opts.Scheduler = clockScheduler{}
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}

	return &Controller{
		url:    opts.URL,
		dialer: opts.Dialer,
		sched:  opts.Scheduler,
		policy: backoff.NewConstantBackOff(opts.ReconnectDelay),
		log:    opts.Logger.WithField("component", "feed"),
	}
}

// OnCandle registers fn to receive every closed bar. fn runs on the
// stream's read goroutine and must not call back into the controller.
func (c *Controller) OnCandle(fn func(market.Candle)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.consumers = append(c.consumers, fn)
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Session is bumped on every connection attempt and on Disconnect.
func (c *Controller) Session() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

func (c *Controller) RetryPending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.retry != nil
}

// Connect dials the stream unless a connection is already open or in
// progress. Dial failures are reported as Errored followed by Closed, so
// they schedule a reconnect like any other close.
func (c *Controller) Connect(ctx context.Context) {
	c.connect(ctx, false)
}

func (c *Controller) connect(ctx context.Context, retry bool) {
	c.mu.Lock()
	if c.state != Disconnected || (retry && c.stopped) {
		c.mu.Unlock()
		return
	}
	if !retry && (c.ctx == nil || c.ctx.Err() != nil) {
		if c.cancel != nil {
			c.cancel()
		}
		c.ctx, c.cancel = context.WithCancel(ctx)
	}
	ctx = c.ctx
	if ctx == nil || ctx.Err() != nil {
		c.mu.Unlock()
		return
	}
	c.stopped = false
	c.session++
	session := c.session
	c.state = Connecting
	c.mu.Unlock()

	c.log.WithFields(logrus.Fields{"url": c.url, "session": session}).Info("connecting")
	conn, err := c.dialer.Dial(ctx, c.url)
	if err != nil {
		c.Dispatch(Errored{Session: session, Err: err})
		c.Dispatch(Closed{Session: session})
		return
	}
	c.Dispatch(Opened{Session: session, Conn: conn})
}

// Disconnect closes the connection, cancels a pending reconnect and
// discards every event still in flight. Safe to call repeatedly.
func (c *Controller) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopped = true
	c.session++
	if c.retry != nil {
		c.retry.Stop()
		c.retry = nil
	}
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
		c.ctx = nil
	}
	if c.state != Disconnected {
		c.log.Info("disconnected")
	}
	c.state = Disconnected
}

// Dispatch applies one connection event.
func (c *Controller) Dispatch(ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ev.session() != c.session {
		if o, ok := ev.(Opened); ok && o.Conn != nil {
			o.Conn.Close()
		}
		return
	}

	switch e := ev.(type) {
	case Opened:
		c.conn = e.Conn
		c.state = Connected
		c.log.WithField("session", e.Session).Info("connected")
		go c.read(e.Session, e.Conn)

	case Message:
		c.handleMessage(e.Data)

	case Errored:
		connectionErrors.Inc()
		c.log.WithError(errors.Wrapf(ErrConnection, "%v", e.Err)).Warn("stream error")

	case Closed:
		c.handleClosed()
	}
}

func (c *Controller) handleMessage(data []byte) {
	candle, closed, err := ParseKline(data)
	if err != nil {
		malformedMessages.Inc()
		c.log.WithError(err).Debug("dropping stream message")
		return
	}
	if !closed {
		partialBarsDropped.Inc()
		return
	}

	candlesForwarded.Inc()
	for _, fn := range c.consumers {
		fn(candle)
	}
}

func (c *Controller) handleClosed() {
	// a session closes once
	if c.state == Disconnected {
		return
	}
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.state = Disconnected
	if c.stopped || c.retry != nil {
		return
	}

	delay := c.policy.NextBackOff()
	if delay == backoff.Stop {
		delay = DefaultReconnectDelay
	}
	c.retry = c.sched.AfterFunc(delay, c.fireRetry)
	reconnectsScheduled.Inc()
	c.log.WithField("delay", delay).Info("stream closed, reconnect scheduled")
}

func (c *Controller) fireRetry() {
	c.mu.Lock()
	c.retry = nil
	c.mu.Unlock()
	c.connect(context.TODO(), true)
}

func (c *Controller) read(session uint64, conn Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.Dispatch(Errored{Session: session, Err: err})
			c.Dispatch(Closed{Session: session})
			return
		}
		c.Dispatch(Message{Session: session, Data: data})
	}
}
