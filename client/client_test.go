package client

import (
	"net"
	"net/rpc"
	"strconv"
	"testing"
	"time"

	"github.com/filecoord/osnfs/models"
	"github.com/filecoord/osnfs/namenode"
	"github.com/filecoord/osnfs/storagenode"
	"github.com/filecoord/osnfs/vault"
)

// serveRPC registers svc under the net/rpc default service name derived
// from its type and starts serving connections on an ephemeral local
// port, returning that port's address.
func serveRPC(t *testing.T, svc any) string {
	t.Helper()

	server := rpc.NewServer()
	if err := server.Register(svc); err != nil {
		t.Fatalf("registering rpc service: %v", err)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	go server.Accept(ln)
	return ln.Addr().String()
}

func startTestCluster(t *testing.T) (nnAddr string, snAddr string) {
	t.Helper()

	reg, err := namenode.NewRegistry(namenode.Config{})
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	nnAddr = serveRPC(t, namenode.NewNameNode(reg))

	dir := t.TempDir()
	backend, err := vault.NewFSBackend(dir + "/content")
	if err != nil {
		t.Fatalf("fs backend: %v", err)
	}
	sn, err := storagenode.New(storagenode.Config{
		ID:      "sn-a",
		Content: backend,
		MetaDir: dir + "/meta",
		NN:      storagenode.NewRPCNNLink(nnAddr),
	})
	if err != nil {
		t.Fatalf("new storage node: %v", err)
	}
	snAddr = serveRPC(t, storagenode.NewService(sn))

	host, port, err := splitHostPort(snAddr)
	if err != nil {
		t.Fatalf("split addr: %v", err)
	}
	if _, err := reg.RegisterSS("sn-a", host, 0, port); err != nil {
		t.Fatalf("register ss: %v", err)
	}

	return nnAddr, snAddr
}

func splitHostPort(addr string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, err
	}
	return host, port, nil
}

func TestCreateWriteReadEndToEnd(t *testing.T) {
	nnAddr, _ := startTestCluster(t)
	c := New("alice", nnAddr)

	if err := c.Create("doc.txt"); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := c.WriteCommit("doc.txt", 0, "0|0|Hello|"); err != nil {
		t.Fatalf("writecommit: %v", err)
	}
	if err := c.WriteCommit("doc.txt", 0, "0|1|world|"); err != nil {
		t.Fatalf("second writecommit: %v", err)
	}

	body, err := c.Read("doc.txt")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if body != "Hello world" {
		t.Fatalf("got %q, want %q", body, "Hello world")
	}
}

func TestCopyEndToEnd(t *testing.T) {
	nnAddr, snAddr := startTestCluster(t)
	c := New("alice", nnAddr)

	if err := c.Create("src.txt"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := c.WriteCommit("src.txt", 0, "0|0|Hello|"); err != nil {
		t.Fatalf("writecommit: %v", err)
	}

	if err := c.Copy("src.txt", "dst.txt"); err != nil {
		t.Fatalf("copy: %v", err)
	}

	// dst.txt only exists on the SN's content store, not in the NN's
	// namespace (the NN never learns about a copy's destination, matching
	// the storage-server-local scope of the reference COPY command), so
	// it must be read by dialing the SN directly rather than through
	// client.Read's NN-resolve path.
	sn, err := rpc.Dial("tcp", snAddr)
	if err != nil {
		t.Fatalf("dial sn: %v", err)
	}
	defer sn.Close()

	var reply models.ReadReply
	args := &models.FileUserArgs{Identity: "alice", Filename: "dst.txt"}
	if err := sn.Call("Service.Read", args, &reply); err != nil {
		t.Fatalf("read dst: %v", err)
	}
	if reply.Code != models.Success || reply.Body != "Hello" {
		t.Fatalf("got body %q code %v, want %q success", reply.Body, reply.Code, "Hello")
	}

	if err := c.Copy("src.txt", "dst.txt"); err == nil {
		t.Fatal("expected copying onto an existing destination to fail")
	}
}

func TestAccessWorkflowEndToEnd(t *testing.T) {
	nnAddr, _ := startTestCluster(t)
	owner := New("alice", nnAddr)
	requester := New("bob", nnAddr)

	if err := owner.Create("shared.txt"); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := requester.Read("shared.txt"); err == nil {
		t.Fatal("expected read to fail before any grant")
	}

	if err := requester.RequestAccess("shared.txt"); err != nil {
		t.Fatalf("request access: %v", err)
	}

	pending, err := owner.ViewRequests()
	if err != nil || len(pending) != 1 {
		t.Fatalf("unexpected pending requests %+v, err %v", pending, err)
	}

	if err := owner.Approve("shared.txt", "bob"); err != nil {
		t.Fatalf("approve: %v", err)
	}

	// Give the approve's SN-side AddAccess call a moment; it is
	// synchronous in this implementation but the dial may still be
	// warming up its first connection.
	time.Sleep(10 * time.Millisecond)

	if _, err := requester.Read("shared.txt"); err != nil {
		t.Fatalf("expected read to succeed after approval, got %v", err)
	}
}
