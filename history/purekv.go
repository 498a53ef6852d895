package history

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	pkv "github.com/gasparian/pure-kv-go/client"
	"github.com/spf13/viper"
)

// PureKV records runs in a pure-kv store: one bucket per run id, the run
// document under the "run" key and each epoch under its number, all as
// JSON.
type PureKV struct {
	client *pkv.Client
}

// PureKVConfig carries the store address and the client timeout in
// milliseconds.
type PureKVConfig struct {
	Address string
	Timeout uint
}

// LoadPureKVConfig reads HISTORY_PUREKV_ADDRESS and
// HISTORY_PUREKV_TIMEOUT_MS from the environment.
func LoadPureKVConfig() PureKVConfig {
	v := viper.New()
	v.SetDefault("HISTORY_PUREKV_ADDRESS", "0.0.0.0:6668")
	v.SetDefault("HISTORY_PUREKV_TIMEOUT_MS", 500)
	v.AutomaticEnv()
	return PureKVConfig{
		Address: v.GetString("HISTORY_PUREKV_ADDRESS"),
		Timeout: uint(v.GetInt("HISTORY_PUREKV_TIMEOUT_MS")),
	}
}

// NewPureKV connects the rpc client.
func NewPureKV(cfg PureKVConfig) (*PureKV, error) {
	client, err := pkv.InitPureKvClient(cfg.Address, cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("history: connect pure-kv: %w", err)
	}
	return &PureKV{client: client}, nil
}

// Close shuts down the rpc client.
func (p *PureKV) Close() {
	p.client.Close()
}

func bucketName(runID string) string {
	return "run-" + runID
}

func (p *PureKV) SaveRun(ctx context.Context, run Run) error {
	doc, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}
	bucket := bucketName(run.ID)
	if err := p.client.Create(bucket); err != nil {
		return err
	}
	return p.client.Set(bucket, "run", doc)
}

func (p *PureKV) SaveEpoch(ctx context.Context, ep Epoch) error {
	doc, err := json.Marshal(ep)
	if err != nil {
		return fmt.Errorf("failed to marshal epoch: %w", err)
	}
	return p.client.Set(bucketName(ep.RunID), strconv.Itoa(ep.Epoch), doc)
}

// GetRun reads a recorded run document back.
func (p *PureKV) GetRun(runID string) (Run, bool) {
	val, ok := p.client.Get(bucketName(runID), "run")
	if !ok {
		return Run{}, false
	}
	raw, ok := val.([]byte)
	if !ok {
		return Run{}, false
	}
	var run Run
	if err := json.Unmarshal(raw, &run); err != nil {
		return Run{}, false
	}
	return run, true
}

// Epochs reads back every recorded epoch of a run, ordered by epoch
// number.
func (p *PureKV) Epochs(runID string) ([]Epoch, error) {
	bucket := bucketName(runID)
	if err := p.client.MakeIterator(bucket); err != nil {
		return nil, err
	}
	var out []Epoch
	for {
		key, val, err := p.client.Next(bucket)
		if err != nil || val == nil {
			break
		}
		if key == "run" {
			continue
		}
		raw, ok := val.([]byte)
		if !ok {
			continue
		}
		var ep Epoch
		if err := json.Unmarshal(raw, &ep); err != nil {
			return nil, fmt.Errorf("failed to unmarshal epoch %s: %w", key, err)
		}
		out = append(out, ep)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Epoch < out[j].Epoch })
	return out, nil
}
