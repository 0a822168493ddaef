package client

import "github.com/filecoord/osnfs/models"

// Lock acquires an exclusive lease on filename's sentenceIdx (spec §4.4:
// "Lock"). The reply's Home endpoint is the SN the following WriteCommit
// must target, so the caller is not required to Resolve separately.
func (c *Client) Lock(filename string, sentenceIdx int) (models.Endpoint, error) {
	nn, err := c.dialNN()
	if err != nil {
		return models.Endpoint{}, err
	}
	defer nn.Close()

	var reply models.LockReply
	args := &models.LockArgs{Identity: c.Identity, Filename: filename, SentenceIdx: sentenceIdx}
	if err := nn.Call("NameNode.Lock", args, &reply); err != nil {
		return models.Endpoint{}, err
	}
	return reply.Home, statusErr(reply.Code)
}

// Unlock releases a previously acquired lease (spec §4.4: "Unlock").
func (c *Client) Unlock(filename string, sentenceIdx int) error {
	nn, err := c.dialNN()
	if err != nil {
		return err
	}
	defer nn.Close()

	var reply models.StatusReply
	args := &models.LockArgs{Identity: c.Identity, Filename: filename, SentenceIdx: sentenceIdx}
	if err := nn.Call("NameNode.Unlock", args, &reply); err != nil {
		return err
	}
	return statusErr(reply.Code)
}

// WriteCommit acquires sentenceIdx's lease, applies editScript through the
// home SN, then releases the lease (spec §4.4/§4.9). Holding the lease
// only for the duration of the call keeps contention windows short, per
// spec §4.4's "locks are meant to be held briefly, for the duration of a
// single edit" design intent.
func (c *Client) WriteCommit(filename string, sentenceIdx int, editScript string) error {
	home, err := c.Lock(filename, sentenceIdx)
	if err != nil {
		return err
	}
	defer c.Unlock(filename, sentenceIdx)

	sn, err := dial(endpointAddr(home))
	if err != nil {
		return err
	}
	defer sn.Close()

	var reply models.StatusReply
	args := &models.WriteCommitArgs{Identity: c.Identity, Filename: filename, EditScript: editScript}
	if err := sn.Call("Service.WriteCommit", args, &reply); err != nil {
		return err
	}
	return statusErr(reply.Code)
}
