package client

import (
	"time"

	"github.com/filecoord/osnfs/models"
)

// Undo restores filename's body to the state before the last WriteCommit
// or Revert (spec §4.7: "Undo").
func (c *Client) Undo(filename string) error {
	sn, err := c.resolve(filename)
	if err != nil {
		return err
	}
	defer sn.Close()

	var reply models.StatusReply
	args := &models.FileUserArgs{Identity: c.Identity, Filename: filename}
	if err := sn.Call("Service.Undo", args, &reply); err != nil {
		return err
	}
	return statusErr(reply.Code)
}

// Checkpoint snapshots filename's current body under tag (spec §4.7:
// "Checkpoint").
func (c *Client) Checkpoint(filename, tag string) error {
	sn, err := c.resolve(filename)
	if err != nil {
		return err
	}
	defer sn.Close()

	var reply models.StatusReply
	args := &models.CheckpointArgs{Identity: c.Identity, Filename: filename, Tag: tag}
	if err := sn.Call("Service.Checkpoint", args, &reply); err != nil {
		return err
	}
	return statusErr(reply.Code)
}

// ViewCheckpoint returns a checkpoint's stored body and timestamp
// (spec §4.7: "ViewCheckpoint").
func (c *Client) ViewCheckpoint(filename, tag string) (string, time.Time, error) {
	sn, err := c.resolve(filename)
	if err != nil {
		return "", time.Time{}, err
	}
	defer sn.Close()

	var reply models.ViewCheckpointReply
	args := &models.CheckpointArgs{Identity: c.Identity, Filename: filename, Tag: tag}
	if err := sn.Call("Service.ViewCheckpoint", args, &reply); err != nil {
		return "", time.Time{}, err
	}
	return reply.Body, reply.Timestamp, statusErr(reply.Code)
}

// Revert replaces filename's live body with a checkpoint's snapshot
// (spec §4.7: "Revert").
func (c *Client) Revert(filename, tag string) error {
	sn, err := c.resolve(filename)
	if err != nil {
		return err
	}
	defer sn.Close()

	var reply models.StatusReply
	args := &models.CheckpointArgs{Identity: c.Identity, Filename: filename, Tag: tag}
	if err := sn.Call("Service.Revert", args, &reply); err != nil {
		return err
	}
	return statusErr(reply.Code)
}

// ListCheckpoints lists every tag recorded for filename (spec §4.7:
// "ListCheckpoints").
func (c *Client) ListCheckpoints(filename string) ([]string, error) {
	sn, err := c.resolve(filename)
	if err != nil {
		return nil, err
	}
	defer sn.Close()

	var reply models.ListCheckpointsReply
	args := &models.FileUserArgs{Identity: c.Identity, Filename: filename}
	if err := sn.Call("Service.ListCheckpoints", args, &reply); err != nil {
		return nil, err
	}
	return reply.Tags, statusErr(reply.Code)
}
