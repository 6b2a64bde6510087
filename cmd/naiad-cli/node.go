package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/formicidae-tracker/naiad/internal/naiad"
	"github.com/formicidae-tracker/naiad/pkg/naiadpb"
	"github.com/formicidae-tracker/olympus/pkg/tm"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

// Node holds connection information for an available naiad server,
// and what it advertises about itself. It also exposes one shot RPC
// calls to the naiadpb server.
type Node struct {
	Name    string `yaml:"name"`
	Address string `yaml:"address"`
	Port    int    `yaml:"port"`
	Version string `yaml:"version,omitempty"`
	Zones   int    `yaml:"zones,omitempty"`
}

// Compatible tells if the node advertises a version this client can
// talk to. Nodes not advertising a version are assumed compatible.
func (n Node) Compatible() (bool, error) {
	if len(n.Version) == 0 {
		return true, nil
	}
	return naiad.VersionAreCompatible(naiad.NAIAD_VERSION, n.Version)
}

func (n Node) Describe() string {
	res := n.DialAddress()
	if len(n.Version) > 0 {
		res += " naiad " + n.Version
	}
	if n.Zones > 0 {
		res += fmt.Sprintf(", %d zones", n.Zones)
	}
	return res
}

func closeAndLogError(closer io.Closer) {
	err := closer.Close()
	if err != nil {
		logrus.WithError(err).Error("gRPC Close() failure")
	}
}

func (n Node) DialAddress() string {
	return fmt.Sprintf("%s:%d", n.Address, n.Port)
}

func (n Node) Connect() (conn *grpc.ClientConn, client naiadpb.NaiadClient, err error) {
	defer func() {
		if err == nil || conn == nil {
			return
		}
		closeAndLogError(conn)
		conn = nil
	}()
	options := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}
	if tm.Enabled() {
		options = append(options,
			grpc.WithUnaryInterceptor(otelgrpc.UnaryClientInterceptor()),
		)
	}
	conn, err = grpc.Dial(n.DialAddress(), options...)
	if err != nil {
		return nil, nil, err
	}

	return conn, naiadpb.NewNaiadClient(conn), nil
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	st := status.Convert(err)
	return errors.New(st.Message())
}

func (n Node) Status(ctx context.Context) (*naiadpb.Status, error) {
	conn, client, err := n.Connect()
	if err != nil {
		return nil, err
	}
	defer closeAndLogError(conn)
	st, err := client.GetStatus(ctx, &naiadpb.Empty{})
	return st, mapError(err)
}

func (n Node) Submit(ctx context.Context, program string) (int, error) {
	conn, client, err := n.Connect()
	if err != nil {
		return 0, err
	}
	defer closeAndLogError(conn)
	reply, err := client.Submit(ctx, &naiadpb.SubmitRequest{
		Program: program,
		Version: naiad.NAIAD_VERSION,
	})
	if err != nil {
		return 0, mapError(err)
	}
	return reply.Commands, nil
}

func (n Node) Interrupt(ctx context.Context, code naiad.InterruptKind, zone, value int) error {
	conn, client, err := n.Connect()
	if err != nil {
		return err
	}
	defer closeAndLogError(conn)
	_, err = client.Interrupt(ctx, &naiadpb.InterruptRequest{
		Code:  int(code),
		Zone:  zone,
		Value: value,
	})
	return mapError(err)
}

func (n Node) ResumeAll(ctx context.Context) error {
	conn, client, err := n.Connect()
	if err != nil {
		return err
	}
	defer closeAndLogError(conn)
	_, err = client.ResumeAll(ctx, &naiadpb.Empty{})
	return mapError(err)
}
