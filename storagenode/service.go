package storagenode

import "github.com/filecoord/osnfs/models"

// Service exposes a StorageNode's operations as a net/rpc service for
// direct client<->SN calls (spec §4.1, §4.7), once the NN has redirected
// a client to this node's address.
type Service struct {
	sn *StorageNode
}

// NewService wraps sn as a net/rpc service.
func NewService(sn *StorageNode) *Service {
	return &Service{sn: sn}
}

func (s *Service) CreateFile(args *models.CreateFileArgs, reply *models.StatusReply) error {
	reply.Code = models.ErrorCodeFor(s.sn.Create(args.Identity, args.Filename))
	return nil
}

func (s *Service) Read(args *models.FileUserArgs, reply *models.ReadReply) error {
	body, err := s.sn.Read(args.Identity, args.Filename)
	reply.Code = models.ErrorCodeFor(err)
	reply.Body = body
	return nil
}

func (s *Service) WriteCommit(args *models.WriteCommitArgs, reply *models.StatusReply) error {
	reply.Code = models.ErrorCodeFor(s.sn.WriteCommit(args.Identity, args.Filename, args.EditScript))
	return nil
}

func (s *Service) DeleteFile(args *models.FileUserArgs, reply *models.StatusReply) error {
	reply.Code = models.ErrorCodeFor(s.sn.Delete(args.Identity, args.Filename))
	return nil
}

func (s *Service) Undo(args *models.FileUserArgs, reply *models.StatusReply) error {
	reply.Code = models.ErrorCodeFor(s.sn.Undo(args.Identity, args.Filename))
	return nil
}

func (s *Service) Info(args *models.FileUserArgs, reply *models.FileInfoReply) error {
	info, err := s.sn.Info(args.Identity, args.Filename)
	reply.Code = models.ErrorCodeFor(err)
	reply.Info = info
	return nil
}

func (s *Service) Stream(args *models.FileUserArgs, reply *models.StreamReply) error {
	words, err := s.sn.Stream(args.Identity, args.Filename)
	reply.Code = models.ErrorCodeFor(err)
	reply.Words = words
	return nil
}

func (s *Service) Copy(args *models.CopyArgs, reply *models.StatusReply) error {
	reply.Code = models.ErrorCodeFor(s.sn.Copy(args.Identity, args.Src, args.Dst))
	return nil
}

func (s *Service) AddAccess(args *models.AccessMutationArgs, reply *models.StatusReply) error {
	reply.Code = models.ErrorCodeFor(s.sn.AddAccess(args.Identity, args.Filename, args.Target))
	return nil
}

func (s *Service) RemAccess(args *models.AccessMutationArgs, reply *models.StatusReply) error {
	reply.Code = models.ErrorCodeFor(s.sn.RemAccess(args.Identity, args.Filename, args.Target))
	return nil
}

func (s *Service) Checkpoint(args *models.CheckpointArgs, reply *models.StatusReply) error {
	reply.Code = models.ErrorCodeFor(s.sn.Checkpoint(args.Identity, args.Filename, args.Tag))
	return nil
}

func (s *Service) ViewCheckpoint(args *models.CheckpointArgs, reply *models.ViewCheckpointReply) error {
	body, ts, err := s.sn.ViewCheckpoint(args.Identity, args.Filename, args.Tag)
	reply.Code = models.ErrorCodeFor(err)
	reply.Body = body
	reply.Timestamp = ts
	return nil
}

func (s *Service) Revert(args *models.CheckpointArgs, reply *models.StatusReply) error {
	reply.Code = models.ErrorCodeFor(s.sn.Revert(args.Identity, args.Filename, args.Tag))
	return nil
}

func (s *Service) ListCheckpoints(args *models.FileUserArgs, reply *models.ListCheckpointsReply) error {
	tags, err := s.sn.ListCheckpoints(args.Identity, args.Filename)
	reply.Code = models.ErrorCodeFor(err)
	reply.Tags = tags
	return nil
}
