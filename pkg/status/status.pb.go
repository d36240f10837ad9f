package status

import (
	"github.com/golang/protobuf/proto"
)

// ControllerStatus is the periodic status event of a controller.
type ControllerStatus struct {
	ControllerId      string `protobuf:"bytes,1,opt,name=controller_id,json=controllerId,proto3" json:"controller_id,omitempty"`
	CommandsProcessed uint64 `protobuf:"varint,2,opt,name=commands_processed,json=commandsProcessed,proto3" json:"commands_processed,omitempty"`
	Errors            uint64 `protobuf:"varint,3,opt,name=errors,proto3" json:"errors,omitempty"`
	LastLine          int64  `protobuf:"varint,4,opt,name=last_line,json=lastLine,proto3" json:"last_line,omitempty"`
	QueueLen          uint32 `protobuf:"varint,5,opt,name=queue_len,json=queueLen,proto3" json:"queue_len,omitempty"`
	PixelsSet         uint64 `protobuf:"varint,6,opt,name=pixels_set,json=pixelsSet,proto3" json:"pixels_set,omitempty"`
	Frames            uint64 `protobuf:"varint,7,opt,name=frames,proto3" json:"frames,omitempty"`
	Brightness        uint32 `protobuf:"varint,8,opt,name=brightness,proto3" json:"brightness,omitempty"`
	Timestamp         int64  `protobuf:"varint,9,opt,name=timestamp,proto3" json:"timestamp,omitempty"`
	Idle              bool   `protobuf:"varint,10,opt,name=idle,proto3" json:"idle,omitempty"`
	LinesRejected     uint64 `protobuf:"varint,11,opt,name=lines_rejected,json=linesRejected,proto3" json:"lines_rejected,omitempty"`
	LinesOverflow     uint64 `protobuf:"varint,12,opt,name=lines_overflow,json=linesOverflow,proto3" json:"lines_overflow,omitempty"`
	LinesDropped      uint64 `protobuf:"varint,13,opt,name=lines_dropped,json=linesDropped,proto3" json:"lines_dropped,omitempty"`
}

func (m *ControllerStatus) Reset()         { *m = ControllerStatus{} }
func (m *ControllerStatus) String() string { return proto.CompactTextString(m) }
func (*ControllerStatus) ProtoMessage()    {}
