package work

import (
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/crypto/ed25519"

	"github.com/rcrowley/go-metrics"

	"github.com/ledgerd/go-ledgerd/blockchain"
	"github.com/ledgerd/go-ledgerd/blockchain/types"
	"github.com/ledgerd/go-ledgerd/crypto"
	"github.com/ledgerd/go-ledgerd/log"
	"github.com/ledgerd/go-ledgerd/params"
)

const resultQueueSize = 10

var logger = log.NewModuleLogger(log.Work)

var (
	// Metrics for miner
	minedBlockCounter    = metrics.NewRegisteredCounter("work/mined", nil)
	failedAppendCounter  = metrics.NewRegisteredCounter("work/appendfailed", nil)
	peerBlockCounter     = metrics.NewRegisteredCounter("work/peerblocks", nil)
	pooledTxCounter      = metrics.NewRegisteredCounter("work/pooledtxs", nil)
	wrongDataTypeCounter = metrics.NewRegisteredCounter("work/wrongdata", nil)
)

// Task is one unit of mining work: the tip observed under the storage lock
// plus a full batch of transactions drained from the pool.
type Task struct {
	PrevID       *uint64
	PrevHash     []byte
	Transactions []*types.Transaction

	createdAt time.Time
}

// Result carries a sealed block back from the agent, or a nil Block when
// sealing was aborted.
type Result struct {
	Task  *Task
	Block *types.Block
}

// Miner owns the transaction pool and a reference to the local storage. Its
// listening loop ingests peer blocks and transactions from the router; its
// mining loop drains full batches, seals blocks on the CPU agent and hands
// winning blocks back to the router for fan-out.
type Miner struct {
	nodeID uint64

	pubKey  ed25519.PublicKey
	privKey ed25519.PrivateKey

	storage *blockchain.Storage
	txPool  *blockchain.TxPool

	inbox  <-chan types.Data
	outbox chan<- types.Data

	agent *CpuAgent
	recv  chan *Result

	quit chan struct{}
	wg   sync.WaitGroup

	mining int32
}

// New creates a miner with a fresh signing key pair.
func New(nodeID uint64, storage *blockchain.Storage, txPool *blockchain.TxPool, difficulty int) (*Miner, error) {
	pub, priv, err := crypto.GenerateKey()
	if err != nil {
		return nil, err
	}
	return &Miner{
		nodeID:  nodeID,
		pubKey:  pub,
		privKey: priv,
		storage: storage,
		txPool:  txPool,
		agent:   NewCpuAgent(priv, difficulty),
		recv:    make(chan *Result, resultQueueSize),
	}, nil
}

// PublicKey returns the miner's verification key.
func (m *Miner) PublicKey() ed25519.PublicKey { return m.pubKey }

// Connect wires the miner to its router endpoints.
func (m *Miner) Connect(inbox <-chan types.Data, outbox chan<- types.Data) {
	m.inbox = inbox
	m.outbox = outbox
}

// Start spins up the listening and mining loops.
func (m *Miner) Start() {
	if !atomic.CompareAndSwapInt32(&m.mining, 0, 1) {
		return
	}
	m.quit = make(chan struct{})
	m.agent.SetReturnCh(m.recv)
	m.agent.Start()
	m.wg.Add(2)
	go m.listenLoop()
	go m.miningLoop()
}

// Stop aborts both loops at their next suspension point and waits for them.
func (m *Miner) Stop() {
	if !atomic.CompareAndSwapInt32(&m.mining, 1, 0) {
		return
	}
	close(m.quit)
	m.agent.Stop()
	m.wg.Wait()
}

// listenLoop ingests peer-originated data routed to the miner.
func (m *Miner) listenLoop() {
	defer m.wg.Done()
	for {
		select {
		case data := <-m.inbox:
			switch d := data.(type) {
			case *types.Block:
				peerBlockCounter.Inc(1)
				logger.Info("Block received from peer", "node", m.nodeID, "id", d.ID)
				if err := m.storage.TryAddBlock(d); err != nil {
					logger.Error("Failed to add peer block", "node", m.nodeID, "id", d.ID, "err", err)
				}
			case *types.Transaction:
				pooledTxCounter.Inc(1)
				m.txPool.Add(d)
			default:
				wrongDataTypeCounter.Inc(1)
				logger.Error("Received wrong data type", "node", m.nodeID, "kind", data.Kind())
			}
		case <-m.quit:
			return
		}
	}
}

// miningLoop repeatedly observes the tip, drains a batch, seals and appends.
func (m *Miner) miningLoop() {
	defer m.wg.Done()
	for {
		var (
			prevID   *uint64
			prevHash []byte
		)
		if prev := m.storage.CurrentBlock(); prev != nil {
			id := prev.ID
			prevID = &id
			prevHash = prev.Hash
		}

		batch := m.waitBatch(params.TxBatchSize)
		if batch == nil {
			return // shutting down
		}
		task := &Task{PrevID: prevID, PrevHash: prevHash, Transactions: batch, createdAt: time.Now()}
		logger.Debug("Commit new mining work", "node", m.nodeID, "txs", len(batch))
		m.agent.Work() <- task

		var result *Result
		select {
		case result = <-m.recv:
		case <-m.quit:
			return
		}
		if result.Block == nil {
			m.txPool.AddAll(result.Task.Transactions)
			continue
		}
		if err := m.storage.TryAddBlock(result.Block); err != nil {
			failedAppendCounter.Inc(1)
			logger.Error("Failed to add self-mined block", "node", m.nodeID,
				"id", result.Block.ID, "err", err)
			m.txPool.AddAll(result.Task.Transactions)
			continue
		}
		minedBlockCounter.Inc(1)
		select {
		case m.outbox <- result.Block:
		case <-m.quit:
			return
		}
	}
}

// waitBatch suspends until a full batch is pending, polling the pool on a
// fixed interval. Returns nil on shutdown.
func (m *Miner) waitBatch(n int) []*types.Transaction {
	for {
		if m.txPool.Len() >= n {
			return m.txPool.Drain(n)
		}
		select {
		case <-time.After(params.TxPoolScanInterval):
		case <-m.quit:
			return nil
		}
	}
}
