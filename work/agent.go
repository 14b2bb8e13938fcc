package work

import (
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/crypto/ed25519"

	"github.com/ledgerd/go-ledgerd/blockchain/types"
	"github.com/ledgerd/go-ledgerd/common"
	"github.com/ledgerd/go-ledgerd/crypto"
)

// stopCheckInterval is how many nonces are tried between abort checks.
const stopCheckInterval = 4096

// CpuAgent runs the proof-of-work search on a dedicated goroutine so the
// node's I/O loops keep running while a block is being mined.
type CpuAgent struct {
	mu sync.Mutex

	workCh        chan *Task
	stop          chan struct{}
	quitCurrentOp chan struct{}
	returnCh      chan<- *Result

	privKey    ed25519.PrivateKey
	difficulty int

	isMining int32
}

// NewCpuAgent returns a stopped agent sealing with the given key at the
// given difficulty.
func NewCpuAgent(privKey ed25519.PrivateKey, difficulty int) *CpuAgent {
	return &CpuAgent{
		privKey:    privKey,
		difficulty: difficulty,
		stop:       make(chan struct{}, 1),
		workCh:     make(chan *Task, 1),
	}
}

func (a *CpuAgent) Work() chan<- *Task            { return a.workCh }
func (a *CpuAgent) SetReturnCh(ch chan<- *Result) { a.returnCh = ch }

func (a *CpuAgent) Start() {
	if !atomic.CompareAndSwapInt32(&a.isMining, 0, 1) {
		return // agent already started
	}
	go a.update()
}

func (a *CpuAgent) Stop() {
	if !atomic.CompareAndSwapInt32(&a.isMining, 1, 0) {
		return // agent already stopped
	}
	a.stop <- struct{}{}
done:
	// Empty work channel
	for {
		select {
		case <-a.workCh:
		default:
			break done
		}
	}
}

func (a *CpuAgent) update() {
out:
	for {
		select {
		case task := <-a.workCh:
			a.mu.Lock()
			if a.quitCurrentOp != nil {
				close(a.quitCurrentOp)
			}
			a.quitCurrentOp = make(chan struct{})
			go a.mine(task, a.quitCurrentOp)
			a.mu.Unlock()
		case <-a.stop:
			a.mu.Lock()
			if a.quitCurrentOp != nil {
				close(a.quitCurrentOp)
				a.quitCurrentOp = nil
			}
			a.mu.Unlock()
			break out
		}
	}
}

func (a *CpuAgent) mine(task *Task, stop <-chan struct{}) {
	start := time.Now()
	block := mineBlock(a.privKey, a.difficulty, task.PrevHash, task.PrevID, task.Transactions, stop)
	if block != nil {
		logger.Info("Successfully sealed new block", "id", block.ID,
			"hash", common.PrintBytes(block.Hash), "nonce", block.Nonce,
			"elapsed", common.PrettyDuration(time.Since(start)))
		a.returnCh <- &Result{Task: task, Block: block}
	} else {
		logger.Debug("Block sealing aborted")
		a.returnCh <- &Result{Task: task}
	}
}

// mineBlock searches for a nonce whose block hash carries the required
// leading zero bytes. The hash stored in the returned block is the hash of
// the block exactly as returned, with only the hash field cleared before
// hashing. Returns nil when aborted through stop.
func mineBlock(privKey ed25519.PrivateKey, difficulty int, prevHash []byte, prevID *uint64,
	txs []*types.Transaction, stop <-chan struct{}) *types.Block {

	var id uint64
	if prevID != nil {
		id = *prevID + 1
	}
	block := &types.Block{
		ID:                id,
		Timestamp:         time.Now().Unix(),
		Signature:         crypto.Sign(privKey, types.SerializeTransactions(txs)),
		PreviousBlockHash: prevHash,
		Transactions:      txs,
	}
	for {
		for i := 0; i < stopCheckInterval; i++ {
			h := block.CalcHash()
			if crypto.ValidHash(h, difficulty) {
				block.Hash = h
				return block
			}
			block.Nonce++
		}
		select {
		case <-stop:
			return nil
		default:
		}
	}
}
