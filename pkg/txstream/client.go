// Copyright 2024 The nft-aggregator Authors
// This file is part of the nft-aggregator indexer.
//
// The nft-aggregator indexer is free software: you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.

// Package txstream implements the Source stage's external collaborator:
// the gRPC transaction-stream client (spec.md §6). The client itself is out
// of scope for the spec's core ("treated as an external collaborator"), but
// a runnable repo still needs one concrete transport, so this wraps
// google.golang.org/grpc — already a dependency of the teacher repo
// (google.golang.org/grpc v1.23.1, used by its own RPC layer) — around a
// minimal StreamClient contract the Source stage depends on.
package txstream

import (
	"context"
	"fmt"
	"io"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/nft-aggregator/indexer/internal/logging"
	"github.com/nft-aggregator/indexer/pkg/chain"
)

var logger = logging.New("txstream")

const (
	serviceName        = "nftindexer.transactionstream.v1.TransactionStream"
	methodGetTransactions = "/" + serviceName + "/GetTransactions"
	methodGetChainID      = "/" + serviceName + "/GetChainId"
)

// StreamClient is the Source stage's view of the remote node (spec.md §6:
// "subscribe(starting_version) -> stream<batch of Transaction>;
// get_chain_id() -> u64").
type StreamClient interface {
	ChainID(ctx context.Context) (uint64, error)
	Subscribe(ctx context.Context, startingVersion int64) (<-chan chain.Batch, <-chan error)
}

// GRPCClient is the concrete transport, dialing indexer_grpc_data_service_address
// (spec.md §6 db_config/transaction_stream_config).
type GRPCClient struct {
	conn      *grpc.ClientConn
	authToken string
}

// Dial connects to the configured data-service address. authToken is
// attached as a per-RPC bearer credential (spec.md §6 transaction_stream_config.auth_token).
func Dial(ctx context.Context, address, authToken string) (*GRPCClient, error) {
	conn, err := grpc.DialContext(ctx, address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("txstream: dial %s: %w", address, err)
	}
	return &GRPCClient{conn: conn, authToken: authToken}, nil
}

func (c *GRPCClient) Close() error { return c.conn.Close() }

func (c *GRPCClient) callOpts() []grpc.CallOption {
	opts := []grpc.CallOption{grpc.CallContentSubtype(codecName)}
	if c.authToken != "" {
		opts = append(opts, grpc.PerRPCCredentials(bearerToken(c.authToken)))
	}
	return opts
}

// bearerToken sends the auth token as an "authorization: Bearer <token>"
// header on every RPC.
type bearerToken string

func (t bearerToken) GetRequestMetadata(ctx context.Context, uri ...string) (map[string]string, error) {
	return map[string]string{"authorization": "Bearer " + string(t)}, nil
}

func (bearerToken) RequireTransportSecurity() bool { return false }

// ChainID implements StreamClient.
func (c *GRPCClient) ChainID(ctx context.Context) (uint64, error) {
	var resp chainIDResponse
	if err := c.conn.Invoke(ctx, methodGetChainID, &struct{}{}, &resp, c.callOpts()...); err != nil {
		return 0, fmt.Errorf("txstream: get chain id: %w", err)
	}
	return resp.ChainID, nil
}

// Subscribe opens a server-streaming RPC starting at startingVersion and
// translates each wire batch into a chain.Batch. The returned channels are
// closed together when the stream ends (err channel receives the terminal
// error, nil on clean EOF, exactly once).
func (c *GRPCClient) Subscribe(ctx context.Context, startingVersion int64) (<-chan chain.Batch, <-chan error) {
	out := make(chan chain.Batch, 1)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		desc := &grpc.StreamDesc{StreamName: "GetTransactions", ServerStreams: true}
		stream, err := c.conn.NewStream(ctx, desc, methodGetTransactions, c.callOpts()...)
		if err != nil {
			errCh <- fmt.Errorf("txstream: open stream: %w", err)
			return
		}
		if err := stream.SendMsg(&subscribeRequest{StartingVersion: startingVersion}); err != nil {
			errCh <- fmt.Errorf("txstream: send subscribe request: %w", err)
			return
		}
		if err := stream.CloseSend(); err != nil {
			errCh <- fmt.Errorf("txstream: close send: %w", err)
			return
		}

		for {
			var msg transactionBatchMessage
			if err := stream.RecvMsg(&msg); err != nil {
				if err == io.EOF {
					return
				}
				errCh <- fmt.Errorf("txstream: recv: %w", err)
				return
			}
			batch, err := toBatch(msg)
			if err != nil {
				errCh <- err
				return
			}
			select {
			case out <- batch:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, errCh
}

func toBatch(msg transactionBatchMessage) (chain.Batch, error) {
	txns := make([]chain.Transaction, 0, len(msg.Transactions))
	for _, wt := range msg.Transactions {
		kind, err := toKind(wt.Kind)
		if err != nil {
			return chain.Batch{}, err
		}
		evs := make([]chain.RawEvent, 0, len(wt.Events))
		for _, we := range wt.Events {
			evs = append(evs, chain.RawEvent{Type: we.Type, Data: we.Data})
		}
		wscs := make([]chain.RawWriteSetChange, 0, len(wt.WriteSetChanges))
		for _, wc := range wt.WriteSetChanges {
			wscs = append(wscs, chain.RawWriteSetChange{
				Type:         toWriteSetChangeType(wc.Type),
				Address:      wc.Address,
				ResourceType: wc.ResourceType,
				ModuleName:   wc.ModuleName,
				Data:         wc.Data,
			})
		}
		txns = append(txns, chain.Transaction{
			Version:           wt.Version,
			Kind:              kind,
			Success:           wt.Success,
			HasInfo:           wt.HasInfo,
			Events:            evs,
			WriteSetChanges:   wscs,
			TimestampUnixSecs: wt.TimestampUnixSecs,
		})
	}
	return chain.Batch{
		StartVersion: msg.StartVersion,
		EndVersion:   msg.EndVersion,
		Transactions: txns,
	}, nil
}

func toKind(k string) (chain.Kind, error) {
	switch k {
	case "block_metadata":
		return chain.KindBlockMetadata, nil
	case "genesis":
		return chain.KindGenesis, nil
	case "user":
		return chain.KindUser, nil
	case "", "unknown":
		return chain.KindUnknown, nil
	default:
		logger.Warn("unrecognized transaction kind, treating as unknown", "kind", k)
		return chain.KindUnknown, nil
	}
}

func toWriteSetChangeType(t string) chain.WriteSetChangeType {
	switch t {
	case "write_resource":
		return chain.WriteSetChangeWriteResource
	case "write_module":
		return chain.WriteSetChangeWriteModule
	default:
		return chain.WriteSetChangeUnknown
	}
}
