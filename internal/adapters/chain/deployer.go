package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	abienc "github.com/fractional-company/vaultctl/internal/adapters/abi"
	"github.com/fractional-company/vaultctl/internal/adapters/artifacts"
	"github.com/fractional-company/vaultctl/internal/domain"
	"github.com/fractional-company/vaultctl/internal/domain/config"
	"github.com/fractional-company/vaultctl/internal/usecase"
)

// ErrNoPrivateKey is returned by Deploy when no deployer key is configured
var ErrNoPrivateKey = errors.New("no deployer private key configured (set DEPLOYER_PRIVATE_KEY)")

// Backend is the part of an RPC client the deployer uses
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
	ChainID(ctx context.Context) (*big.Int, error)
	Close()
}

// DialFunc opens a backend for an RPC URL
type DialFunc func(ctx context.Context, url string) (Backend, error)

func dialEthclient(ctx context.Context, url string) (Backend, error) {
	client, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// Deployer sends creation transactions with a keyed transactor and reads
// immutable getters, over one lazily dialed connection.
type Deployer struct {
	network    *config.Network
	privateKey string
	artifacts  *artifacts.Repository
	dial       DialFunc
	log        *slog.Logger

	mu      sync.Mutex
	backend Backend
	chainID *big.Int
	auth    *bind.TransactOpts
}

// NewDeployer creates a deployer; a nil dial uses ethclient
func NewDeployer(network *config.Network, privateKey string, repo *artifacts.Repository, dial DialFunc, log *slog.Logger) *Deployer {
	if dial == nil {
		dial = dialEthclient
	}
	return &Deployer{
		network:    network,
		privateKey: privateKey,
		artifacts:  repo,
		dial:       dial,
		log:        log.With("component", "ChainDeployer"),
	}
}

// ProvideDeployer creates the deployer from the runtime config
func ProvideDeployer(cfg *config.RuntimeConfig, repo *artifacts.Repository, log *slog.Logger) *Deployer {
	return NewDeployer(cfg.Network, cfg.PrivateKey, repo, nil, log)
}

// connect dials once and checks the node serves the configured chain
func (d *Deployer) connect(ctx context.Context) (Backend, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.backend != nil {
		return d.backend, nil
	}
	if d.network == nil || d.network.RPCURL == "" {
		return nil, fmt.Errorf("no rpc url configured for the network")
	}

	d.log.Debug("dialing rpc", "network", d.network.Name, "url", d.network.RPCURL)
	backend, err := d.dial(ctx, d.network.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", d.network.RPCURL, err)
	}

	chainID, err := backend.ChainID(ctx)
	if err != nil {
		backend.Close()
		return nil, fmt.Errorf("failed to get chain ID: %w", err)
	}
	if d.network.ChainID != 0 && chainID.Uint64() != d.network.ChainID {
		backend.Close()
		return nil, fmt.Errorf("%w: %s expects chain %d, rpc reports %s",
			domain.ErrNetworkMismatch, d.network.Name, d.network.ChainID, chainID)
	}
	d.log.Debug("connected", "chain_id", chainID)

	d.backend = backend
	d.chainID = chainID
	return backend, nil
}

func (d *Deployer) transactor() (*bind.TransactOpts, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.auth != nil {
		return d.auth, nil
	}
	if d.privateKey == "" {
		return nil, ErrNoPrivateKey
	}
	key, err := crypto.HexToECDSA(strings.TrimPrefix(d.privateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	auth, err := bind.NewKeyedTransactorWithChainID(key, d.chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}
	if pub, ok := key.Public().(*ecdsa.PublicKey); ok {
		d.log.Debug("deployer account", "address", crypto.PubkeyToAddress(*pub).Hex())
	}
	d.auth = auth
	return auth, nil
}

// Deploy links the artifact, packs the constructor arguments, sends the
// creation transaction and waits for a successful receipt.
func (d *Deployer) Deploy(ctx context.Context, req *domain.DeployRequest) (common.Address, error) {
	artifact, err := d.artifacts.Load(req.Artifact)
	if err != nil {
		return common.Address{}, err
	}
	code, err := artifact.Link(req.Libraries)
	if err != nil {
		return common.Address{}, err
	}
	params, err := abienc.ConvertConstructorArgs(&artifact.ABI, req.ConstructorArgs)
	if err != nil {
		return common.Address{}, fmt.Errorf("%s: %w", req.Component, err)
	}

	backend, err := d.connect(ctx)
	if err != nil {
		return common.Address{}, err
	}
	auth, err := d.transactor()
	if err != nil {
		return common.Address{}, err
	}

	opts := *auth
	opts.Context = ctx

	address, tx, _, err := bind.DeployContract(&opts, artifact.ABI, code, backend, params...)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to deploy contract: %w", err)
	}
	d.log.Info("contract deployment transaction sent",
		"component", req.Component, "address", address.Hex(), "tx_hash", tx.Hash().Hex())

	receipt, err := bind.WaitMined(ctx, backend, tx)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to wait for transaction %s: %w", tx.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return common.Address{}, fmt.Errorf("contract deployment failed with status %d (tx %s)", receipt.Status, tx.Hash().Hex())
	}
	return receipt.ContractAddress, nil
}

// ReadAddress calls the address-returning getter field on the contract at address
func (d *Deployer) ReadAddress(ctx context.Context, ref domain.ArtifactRef, address common.Address, field string) (common.Address, error) {
	artifact, err := d.artifacts.Load(ref)
	if err != nil {
		return common.Address{}, err
	}
	if _, ok := artifact.ABI.Methods[field]; !ok {
		return common.Address{}, fmt.Errorf("%s has no method %s", ref.Name, field)
	}

	backend, err := d.connect(ctx)
	if err != nil {
		return common.Address{}, err
	}

	contract := bind.NewBoundContract(address, artifact.ABI, backend, backend, backend)
	var out []interface{}
	if err := contract.Call(&bind.CallOpts{Context: ctx}, &out, field); err != nil {
		return common.Address{}, fmt.Errorf("failed to call %s.%s: %w", ref.Name, field, err)
	}
	if len(out) != 1 {
		return common.Address{}, fmt.Errorf("%s.%s returned %d values", ref.Name, field, len(out))
	}
	got, ok := out[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("%s.%s does not return an address", ref.Name, field)
	}
	if got == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%s.%s returned the zero address", ref.Name, field)
	}
	return got, nil
}

// Close releases the RPC connection if one was opened
func (d *Deployer) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.backend != nil {
		d.backend.Close()
		d.backend = nil
	}
}

var _ usecase.ContractDeployer = (*Deployer)(nil)
