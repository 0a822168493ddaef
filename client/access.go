package client

import "github.com/filecoord/osnfs/models"

// RequestAccess asks filename's owner for read access (spec §4.6:
// "RequestAccess").
func (c *Client) RequestAccess(filename string) error {
	nn, err := c.dialNN()
	if err != nil {
		return err
	}
	defer nn.Close()

	var reply models.StatusReply
	args := &models.AccessRequestArgs{Requester: c.Identity, Filename: filename}
	if err := nn.Call("NameNode.RequestAccess", args, &reply); err != nil {
		return err
	}
	return statusErr(reply.Code)
}

// ViewRequests lists every pending request against files this client owns
// (spec §4.6: "ViewRequests").
func (c *Client) ViewRequests() ([]models.AccessRequest, error) {
	nn, err := c.dialNN()
	if err != nil {
		return nil, err
	}
	defer nn.Close()

	var reply models.ViewRequestsReply
	if err := nn.Call("NameNode.ViewRequests", &models.ViewRequestsArgs{Owner: c.Identity}, &reply); err != nil {
		return nil, err
	}
	return reply.Requests, statusErr(reply.Code)
}

// Approve grants requester read access to filename (spec §4.6: "Approve").
// The NN clears the pending request and returns the home SN's endpoint;
// this client then sends the AddAccess call to that SN itself. The NN
// does not contact the SN.
func (c *Client) Approve(filename, requester string) error {
	nn, err := c.dialNN()
	if err != nil {
		return err
	}
	var reply models.RedirectReply
	args := &models.ApproveArgs{Owner: c.Identity, Filename: filename, Requester: requester}
	callErr := nn.Call("NameNode.Approve", args, &reply)
	nn.Close()
	if callErr != nil {
		return callErr
	}
	if err := statusErr(reply.Code); err != nil {
		return err
	}

	sn, err := dial(endpointAddr(reply.Home))
	if err != nil {
		return err
	}
	defer sn.Close()

	var snReply models.StatusReply
	mutation := &models.AccessMutationArgs{Identity: c.Identity, Filename: filename, Target: requester}
	if err := sn.Call("Service.AddAccess", mutation, &snReply); err != nil {
		return err
	}
	return statusErr(snReply.Code)
}

// Deny clears requester's pending request without granting access
// (spec §4.6: "Deny").
func (c *Client) Deny(filename, requester string) error {
	nn, err := c.dialNN()
	if err != nil {
		return err
	}
	defer nn.Close()

	var reply models.StatusReply
	args := &models.ApproveArgs{Owner: c.Identity, Filename: filename, Requester: requester}
	if err := nn.Call("NameNode.Deny", args, &reply); err != nil {
		return err
	}
	return statusErr(reply.Code)
}

// RemAccess revokes target's access to filename directly, without going
// through a pending request (spec §4.7: "RemAccess").
func (c *Client) RemAccess(filename, target string) error {
	sn, err := c.resolve(filename)
	if err != nil {
		return err
	}
	defer sn.Close()

	var reply models.StatusReply
	args := &models.AccessMutationArgs{Identity: c.Identity, Filename: filename, Target: target}
	if err := sn.Call("Service.RemAccess", args, &reply); err != nil {
		return err
	}
	return statusErr(reply.Code)
}
