package monitoring

import "github.com/prometheus/client_golang/prometheus"

// Metrics collects per-run simulator counters/gauges, backed by Prometheus
// collectors so cmd/powsim can expose them over /metrics when
// EnableMonitoring is set (see pkg/config.RunConfig).
type Metrics struct {
	blocksProcessed prometheus.Counter
	txProcessed     prometheus.Counter
	peerCount       prometheus.Gauge
	inboundPeers    prometheus.Gauge
	outboundPeers   prometheus.Gauge
	messagesSent    prometheus.Counter
	messagesRecv    prometheus.Counter
	mempoolSize     prometheus.Gauge
	syncsStarted    prometheus.Counter
	disconnects     prometheus.Counter
}

// NewMetrics creates a fresh set of collectors, registered under reg if
// reg is non-nil. Pass prometheus.NewRegistry() for an isolated registry
// per simulation run so repeated runs in one process don't collide on
// collector names.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		blocksProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "powsim_blocks_processed_total", Help: "Blocks appended to any node's chain.",
		}),
		txProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "powsim_tx_processed_total", Help: "Transactions accepted into a mempool.",
		}),
		peerCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "powsim_peers", Help: "Currently connected peers, summed across nodes.",
		}),
		inboundPeers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "powsim_peers_inbound", Help: "Currently connected inbound peers.",
		}),
		outboundPeers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "powsim_peers_outbound", Help: "Currently connected outbound peers.",
		}),
		messagesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "powsim_messages_sent_total", Help: "Protocol messages sent.",
		}),
		messagesRecv: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "powsim_messages_received_total", Help: "Protocol messages received.",
		}),
		mempoolSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "powsim_mempool_size", Help: "Mempool size reported by the node that last updated it.",
		}),
		syncsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "powsim_syncs_started_total", Help: "Header-first sync attempts started (num_syncs).",
		}),
		disconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "powsim_disconnects_total", Help: "Peer disconnects.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.blocksProcessed, m.txProcessed, m.peerCount, m.inboundPeers,
			m.outboundPeers, m.messagesSent, m.messagesRecv, m.mempoolSize, m.syncsStarted, m.disconnects)
	}
	return m
}

func (m *Metrics) RecordBlockProcessed()   { m.blocksProcessed.Inc() }
func (m *Metrics) RecordTxProcessed()      { m.txProcessed.Inc() }
func (m *Metrics) RecordMessageSent()      { m.messagesSent.Inc() }
func (m *Metrics) RecordMessageReceived()  { m.messagesRecv.Inc() }
func (m *Metrics) RecordDisconnect()       { m.disconnects.Inc() }
func (m *Metrics) SetMempoolSize(size int) { m.mempoolSize.Set(float64(size)) }

// RecordSync increments the num_syncs counter (SPEC_FULL.md §11: num_syncs
// exposed for tests/metrics).
func (m *Metrics) RecordSync() { m.syncsStarted.Inc() }

func (m *Metrics) IncrementPeerCount(inbound bool) {
	m.peerCount.Inc()
	if inbound {
		m.inboundPeers.Inc()
	} else {
		m.outboundPeers.Inc()
	}
}

func (m *Metrics) DecrementPeerCount(inbound bool) {
	m.peerCount.Dec()
	if inbound {
		m.inboundPeers.Dec()
	} else {
		m.outboundPeers.Dec()
	}
}

// Noop returns a Metrics instance that is never registered with a
// registry — for unit tests that need a valid *Metrics but don't scrape it.
func Noop() *Metrics { return NewMetrics(nil) }
