// Package client implements the two/three-hop access pattern every
// operation in spec §4.1 follows: dial the Name Node to resolve or
// redirect, then dial the Storage Node the NN named to actually touch
// content (spec §4.2's table, §6).
package client

import (
	"fmt"
	"net"
	"net/rpc"
	"time"

	"github.com/filecoord/osnfs/helper"
	"github.com/filecoord/osnfs/models"
)

// Client is one user's session against the system: its identity, the
// NN's address, and a log prefix. It holds no long-lived connections,
// matching Ignite99-GFS_Project's client.go dial-per-call style.
type Client struct {
	Identity string
	nnAddr   string
	log      *helper.Logger
}

// New constructs a Client for identity against the Name Node at nnAddr
// ("host:port").
func New(identity, nnAddr string) *Client {
	return &Client{Identity: identity, nnAddr: nnAddr, log: helper.NewLogger("[client]")}
}

// dial connects to addr with helper's retry/back-off policy (spec §9's
// "the reference reconnects with no back-off" redesign flag, resolved by
// bounding both the attempt count and the delay between attempts). Each
// dial is bounded by helper.ControlTimeout, and the connection it returns
// carries a read/write deadline of helper.ControlTimeout from that moment.
func dial(addr string) (*rpc.Client, error) {
	var lastErr error
	for attempt := 0; attempt < helper.ConnectRetryAttempts; attempt++ {
		conn, err := net.DialTimeout("tcp", addr, helper.ControlTimeout)
		if err == nil {
			conn.SetDeadline(time.Now().Add(helper.ControlTimeout))
			return rpc.NewClient(conn), nil
		}
		lastErr = err
		time.Sleep(helper.ConnectRetryDelay)
	}
	return nil, fmt.Errorf("dialing %s after %d attempts: %w", addr, helper.ConnectRetryAttempts, lastErr)
}

func (c *Client) dialNN() (*rpc.Client, error) {
	return dial(c.nnAddr)
}

func endpointAddr(ep models.Endpoint) string {
	return fmt.Sprintf("%s:%d", ep.Address, ep.ClientPort)
}

func statusErr(code models.ErrorCode) error {
	if code == models.Success {
		return nil
	}
	return fmt.Errorf("%s", code.String())
}

// Register tells the NN about this client's address, so future
// RegisterUser-driven features (e.g. push notification of approved
// access) have somewhere to reach it (spec §4.2: "RegisterUser").
func (c *Client) Register(myAddr string) error {
	nn, err := c.dialNN()
	if err != nil {
		return err
	}
	defer nn.Close()

	var reply models.RegisterUserReply
	if err := nn.Call("NameNode.RegisterUser", &models.RegisterUserArgs{Identity: c.Identity, Address: myAddr}, &reply); err != nil {
		return err
	}
	return statusErr(reply.Code)
}

// View lists every file's name, owner, and cached counts (spec §4.2:
// "View").
func (c *Client) View() ([]models.ViewEntry, error) {
	nn, err := c.dialNN()
	if err != nil {
		return nil, err
	}
	defer nn.Close()

	var reply models.ViewReply
	if err := nn.Call("NameNode.View", &models.ViewArgs{Identity: c.Identity}, &reply); err != nil {
		return nil, err
	}
	return reply.Entries, statusErr(reply.Code)
}

// ListUsers lists every known user identity (spec §4.2: "List").
func (c *Client) ListUsers() ([]models.UserRecord, error) {
	nn, err := c.dialNN()
	if err != nil {
		return nil, err
	}
	defer nn.Close()

	var reply models.ListReply
	if err := nn.Call("NameNode.List", &models.ListArgs{Identity: c.Identity}, &reply); err != nil {
		return nil, err
	}
	return reply.Users, statusErr(reply.Code)
}

// Create asks the NN to allocate filename, then tells the chosen SN to
// materialize it (spec §4.2/§4.7: "Create").
func (c *Client) Create(filename string) error {
	nn, err := c.dialNN()
	if err != nil {
		return err
	}
	var createReply models.RedirectReply
	callErr := nn.Call("NameNode.Create", &models.CreateArgs{Identity: c.Identity, Filename: filename}, &createReply)
	nn.Close()
	if callErr != nil {
		return callErr
	}
	if err := statusErr(createReply.Code); err != nil {
		return err
	}

	sn, err := dial(endpointAddr(createReply.Home))
	if err != nil {
		return err
	}
	defer sn.Close()

	var snReply models.StatusReply
	if err := sn.Call("Service.CreateFile", &models.CreateFileArgs{Identity: c.Identity, Filename: filename}, &snReply); err != nil {
		return err
	}
	return statusErr(snReply.Code)
}

// Delete asks the NN to drop filename's namespace entry (spec §4.2:
// "Delete"). It does not contact the home SN: the SN's content, metadata
// and checkpoints for filename stay on that node, no longer reachable
// through the NN.
func (c *Client) Delete(filename string) error {
	nn, err := c.dialNN()
	if err != nil {
		return err
	}
	defer nn.Close()

	var reply models.StatusReply
	if err := nn.Call("NameNode.Delete", &models.DeleteArgs{Identity: c.Identity, Filename: filename}, &reply); err != nil {
		return err
	}
	return statusErr(reply.Code)
}

// resolve asks the NN for filename's home SN and dials it, returning a
// ready-to-use *rpc.Client the caller must Close.
func (c *Client) resolve(filename string) (*rpc.Client, error) {
	nn, err := c.dialNN()
	if err != nil {
		return nil, err
	}
	var reply models.RedirectReply
	callErr := nn.Call("NameNode.Resolve", &models.ResolveArgs{Identity: c.Identity, Filename: filename}, &reply)
	nn.Close()
	if callErr != nil {
		return nil, callErr
	}
	if err := statusErr(reply.Code); err != nil {
		return nil, err
	}
	return dial(endpointAddr(reply.Home))
}

// Read returns filename's full body (spec §4.7: "Read").
func (c *Client) Read(filename string) (string, error) {
	sn, err := c.resolve(filename)
	if err != nil {
		return "", err
	}
	defer sn.Close()

	var reply models.ReadReply
	if err := sn.Call("Service.Read", &models.FileUserArgs{Identity: c.Identity, Filename: filename}, &reply); err != nil {
		return "", err
	}
	return reply.Body, statusErr(reply.Code)
}

// Info returns filename's metadata (spec §4.7: "Info").
func (c *Client) Info(filename string) (models.FileInfo, error) {
	sn, err := c.resolve(filename)
	if err != nil {
		return models.FileInfo{}, err
	}
	defer sn.Close()

	var reply models.FileInfoReply
	if err := sn.Call("Service.Info", &models.FileUserArgs{Identity: c.Identity, Filename: filename}, &reply); err != nil {
		return models.FileInfo{}, err
	}
	return reply.Info, statusErr(reply.Code)
}

// Copy duplicates src's content into a brand-new dst on src's home SN
// (spec §4.7: "Copy"). dst does not exist in the NN's namespace yet, so
// resolution goes through src, matching storagenode.Copy's same-SN
// creation of dst.
func (c *Client) Copy(src, dst string) error {
	sn, err := c.resolve(src)
	if err != nil {
		return err
	}
	defer sn.Close()

	var reply models.StatusReply
	if err := sn.Call("Service.Copy", &models.CopyArgs{Identity: c.Identity, Src: src, Dst: dst}, &reply); err != nil {
		return err
	}
	return statusErr(reply.Code)
}
