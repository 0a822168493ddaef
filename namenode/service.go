package namenode

import (
	"github.com/filecoord/osnfs/models"
)

// NameNode exposes Registry's operations as a net/rpc service (spec §4.1,
// redesigned per SPEC_FULL.md §4.1 from the reference's fixed-size byte
// frame to net/rpc's gob-encoded call/reply, grounded in how
// Ignite99-GFS_Project's master and chunkserver already talk to each
// other). Every exported method matches the one-arg/one-reply/error
// signature net/rpc requires.
type NameNode struct {
	reg *Registry
}

// NewNameNode wraps reg as a net/rpc service.
func NewNameNode(reg *Registry) *NameNode {
	return &NameNode{reg: reg}
}

func codeFor(err error) models.ErrorCode {
	return models.ErrorCodeFor(err)
}

func (n *NameNode) RegisterSS(args *models.RegisterSSArgs, reply *models.RegisterSSReply) error {
	peer, err := n.reg.RegisterSS(args.ID, args.Address, args.ControlPort, args.ClientPort)
	reply.Code = codeFor(err)
	reply.ReplicaPeer = peer
	return nil
}

func (n *NameNode) RegisterUser(args *models.RegisterUserArgs, reply *models.RegisterUserReply) error {
	err := n.reg.RegisterUser(args.Identity, args.Address)
	reply.Code = codeFor(err)
	return nil
}

func (n *NameNode) View(args *models.ViewArgs, reply *models.ViewReply) error {
	reply.Entries = n.reg.View()
	reply.Code = models.Success
	return nil
}

func (n *NameNode) List(args *models.ListArgs, reply *models.ListReply) error {
	reply.Users = n.reg.ListUsers()
	reply.Code = models.Success
	return nil
}

func (n *NameNode) Create(args *models.CreateArgs, reply *models.RedirectReply) error {
	ep, err := n.reg.Create(args.Identity, args.Filename)
	reply.Code = codeFor(err)
	reply.Home = ep
	return nil
}

func (n *NameNode) Delete(args *models.DeleteArgs, reply *models.StatusReply) error {
	err := n.reg.Delete(args.Identity, args.Filename)
	reply.Code = codeFor(err)
	return nil
}

// Resolve backs every client operation that needs a filename's home SN
// address (Read, Info, Stream, Copy, Write, AddAccess, RemAccess, Undo,
// the checkpoint family; spec §4.2's table).
func (n *NameNode) Resolve(args *models.ResolveArgs, reply *models.RedirectReply) error {
	ep, err := n.reg.Resolve(args.Identity, args.Filename)
	reply.Code = codeFor(err)
	reply.Home = ep
	return nil
}

func (n *NameNode) Lock(args *models.LockArgs, reply *models.LockReply) error {
	ep, err := n.reg.AcquireLock(args.Identity, args.Filename, args.SentenceIdx)
	reply.Code = codeFor(err)
	reply.Home = ep
	if err == nil {
		reply.Holder = args.Identity
	}
	return nil
}

func (n *NameNode) Unlock(args *models.LockArgs, reply *models.StatusReply) error {
	err := n.reg.ReleaseLock(args.Identity, args.Filename, args.SentenceIdx)
	reply.Code = codeFor(err)
	return nil
}

func (n *NameNode) CheckLock(args *models.CheckLockArgs, reply *models.CheckLockReply) error {
	reply.OK = n.reg.CheckLocks(args.Identity, args.Filename, args.SentenceIdxs)
	reply.Code = models.Success
	return nil
}

func (n *NameNode) RequestAccess(args *models.AccessRequestArgs, reply *models.StatusReply) error {
	err := n.reg.RequestAccess(args.Requester, args.Filename)
	reply.Code = codeFor(err)
	return nil
}

func (n *NameNode) ViewRequests(args *models.ViewRequestsArgs, reply *models.ViewRequestsReply) error {
	reply.Requests = n.reg.ViewRequests(args.Owner)
	reply.Code = models.Success
	return nil
}

// Approve clears the pending request and tells the caller which SN to
// forward an AddAccess call to (spec §4.6).
func (n *NameNode) Approve(args *models.ApproveArgs, reply *models.RedirectReply) error {
	ep, err := n.reg.ApproveRequest(args.Owner, args.Filename, args.Requester)
	reply.Code = codeFor(err)
	reply.Home = ep
	return nil
}

func (n *NameNode) Deny(args *models.ApproveArgs, reply *models.StatusReply) error {
	err := n.reg.DenyRequest(args.Owner, args.Filename, args.Requester)
	reply.Code = codeFor(err)
	return nil
}

func (n *NameNode) Heartbeat(args *models.HeartbeatArgs, reply *models.HeartbeatReply) error {
	ackedAt, err := n.reg.Heartbeat(args.ID, args.SentAt)
	reply.Code = codeFor(err)
	reply.AckedAt = ackedAt
	return nil
}

// ReportFileStats lets a Storage Node push back updated word/char counts
// after a WriteCommit/Undo/Revert, keeping the NN's View-facing cache
// consistent with spec §8 invariant 4 without the NN polling SNs for it.
func (n *NameNode) ReportFileStats(args *models.ReportFileStatsArgs, reply *models.StatusReply) error {
	err := n.reg.UpdateFileStats(args.Filename, args.WordCount, args.CharCount, true)
	reply.Code = codeFor(err)
	return nil
}
