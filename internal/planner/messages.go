package planner

import (
	"github.com/scsess/scsess/internal/osc"
	"github.com/scsess/scsess/internal/settings"
	"github.com/scsess/scsess/internal/timeline"
)

func boolArg(v bool) osc.Arg {
	if v {
		return osc.Int32(1)
	}
	return osc.Int32(0)
}

func synthDefReceiveMessage(bytes []byte) osc.Message {
	return osc.Message{Address: "/d_recv", Args: []osc.Arg{osc.Blob(bytes)}}
}

func bufferAllocateMessage(id int64, frames, channels int) osc.Message {
	return osc.Message{Address: "/b_alloc", Args: []osc.Arg{osc.Int32(int32(id)), osc.Int32(int32(frames)), osc.Int32(int32(channels))}}
}

func bufferAllocateReadMessage(id int64, path string, start, frames int) osc.Message {
	return osc.Message{Address: "/b_allocRead", Args: []osc.Arg{osc.Int32(int32(id)), osc.String(path), osc.Int32(int32(start)), osc.Int32(int32(frames))}}
}

func bufferAllocateReadChannelMessage(id int64, path string, start, frames int, channels []int) osc.Message {
	args := []osc.Arg{osc.Int32(int32(id)), osc.String(path), osc.Int32(int32(start)), osc.Int32(int32(frames))}
	for _, c := range channels {
		args = append(args, osc.Int32(int32(c)))
	}
	return osc.Message{Address: "/b_allocReadChannel", Args: args}
}

func bufferCloseMessage(id int64) osc.Message {
	return osc.Message{Address: "/b_close", Args: []osc.Arg{osc.Int32(int32(id))}}
}

func bufferFreeMessage(id int64) osc.Message {
	return osc.Message{Address: "/b_free", Args: []osc.Arg{osc.Int32(int32(id))}}
}

func bufferReadMessage(bs settings.BufferSetting) osc.Message {
	return osc.Message{Address: "/b_read", Args: []osc.Arg{
		osc.Int32(int32(bs.BufferID)), osc.String(bs.Path),
		osc.Int32(int32(bs.StartFrame)), osc.Int32(int32(bs.FrameCount)), boolArg(bs.LeaveOpen),
	}}
}

func bufferReadChannelMessage(bs settings.BufferSetting) osc.Message {
	args := []osc.Arg{
		osc.Int32(int32(bs.BufferID)), osc.String(bs.Path),
		osc.Int32(int32(bs.StartFrame)), osc.Int32(int32(bs.FrameCount)), boolArg(bs.LeaveOpen),
	}
	for _, c := range bs.Channels {
		args = append(args, osc.Int32(int32(c)))
	}
	return osc.Message{Address: "/b_readChannel", Args: args}
}

func bufferWriteMessage(bs settings.BufferSetting) osc.Message {
	return osc.Message{Address: "/b_write", Args: []osc.Arg{
		osc.Int32(int32(bs.BufferID)), osc.String(bs.Path),
		osc.Int32(int32(bs.StartFrame)), osc.Int32(int32(bs.FrameCount)), boolArg(bs.LeaveOpen),
	}}
}

func bufferZeroMessage(bs settings.BufferSetting) osc.Message {
	return osc.Message{Address: "/b_zero", Args: []osc.Arg{osc.Int32(int32(bs.BufferID))}}
}

func bufferFillMessage(bs settings.BufferSetting) osc.Message {
	args := []osc.Arg{osc.Int32(int32(bs.BufferID)), osc.Int32(int32(bs.StartFrame)), osc.Int32(int32(bs.FrameCount))}
	for _, v := range bs.Values {
		args = append(args, osc.Float32(float32(v)))
	}
	return osc.Message{Address: "/b_fill", Args: args}
}

func bufferGenerateMessage(bs settings.BufferSetting) osc.Message {
	args := []osc.Arg{osc.Int32(int32(bs.BufferID)), osc.String(bs.GeneratorName)}
	for _, v := range bs.Values {
		args = append(args, osc.Float32(float32(v)))
	}
	return osc.Message{Address: "/b_gen", Args: args}
}

func bufferSetMessage(bs settings.BufferSetting) osc.Message {
	args := []osc.Arg{osc.Int32(int32(bs.BufferID))}
	for i, v := range bs.Values {
		args = append(args, osc.Int32(int32(bs.StartFrame+i)), osc.Float32(float32(v)))
	}
	return osc.Message{Address: "/b_set", Args: args}
}

func bufferSetContiguousMessage(bs settings.BufferSetting) osc.Message {
	args := []osc.Arg{osc.Int32(int32(bs.BufferID)), osc.Int32(int32(bs.StartFrame)), osc.Int32(int32(len(bs.Values)))}
	for _, v := range bs.Values {
		args = append(args, osc.Float32(float32(v)))
	}
	return osc.Message{Address: "/b_setn", Args: args}
}

func bufferNormalizeMessage(bs settings.BufferSetting) osc.Message {
	args := []osc.Arg{osc.Int32(int32(bs.BufferID)), osc.String("normalize")}
	for _, v := range bs.Values {
		args = append(args, osc.Float32(float32(v)))
	}
	return osc.Message{Address: "/b_gen", Args: args}
}

func bufferCopyMessage(bs settings.BufferSetting) osc.Message {
	return osc.Message{Address: "/b_gen", Args: []osc.Arg{
		osc.Int32(int32(bs.BufferID)), osc.String("copy"),
		osc.Int32(int32(bs.StartFrame)), osc.Int32(int32(bs.SourceBufferID)),
		osc.Int32(int32(bs.FrameCount)),
	}}
}

// addActionInt encodes the AddToHead/.../ReplaceNode kind as scsynth's
// conventional add-action integer (0..4), used by /s_new and /g_new.
func addActionInt(kind timeline.ActionKind) int32 { return int32(kind) }

func synthNewMessage(name string, id int64, addAction int32, target int64, kv []osc.Arg) osc.Message {
	args := []osc.Arg{osc.String(name), osc.Int32(int32(id)), osc.Int32(addAction), osc.Int32(int32(target))}
	args = append(args, kv...)
	return osc.Message{Address: "/s_new", Args: args}
}

func groupNewMessage(id int64, addAction int32, target int64) osc.Message {
	return osc.Message{Address: "/g_new", Args: []osc.Arg{osc.Int32(int32(id)), osc.Int32(addAction), osc.Int32(int32(target))}}
}

func groupHeadMessage(groupID, nodeID int64) osc.Message {
	return osc.Message{Address: "/g_head", Args: []osc.Arg{osc.Int32(int32(groupID)), osc.Int32(int32(nodeID))}}
}

func groupTailMessage(groupID, nodeID int64) osc.Message {
	return osc.Message{Address: "/g_tail", Args: []osc.Arg{osc.Int32(int32(groupID)), osc.Int32(int32(nodeID))}}
}

func nodeBeforeMessage(nodeID, refID int64) osc.Message {
	return osc.Message{Address: "/n_before", Args: []osc.Arg{osc.Int32(int32(nodeID)), osc.Int32(int32(refID))}}
}

func nodeAfterMessage(nodeID, refID int64) osc.Message {
	return osc.Message{Address: "/n_after", Args: []osc.Arg{osc.Int32(int32(nodeID)), osc.Int32(int32(refID))}}
}

func nodeFreeMessage(ids []int64) osc.Message {
	args := make([]osc.Arg, 0, len(ids))
	for _, id := range ids {
		args = append(args, osc.Int32(int32(id)))
	}
	return osc.Message{Address: "/n_free", Args: args}
}

func nodeSetMessage(id int64, kv []osc.Arg) osc.Message {
	args := append([]osc.Arg{osc.Int32(int32(id))}, kv...)
	return osc.Message{Address: "/n_set", Args: args}
}

func nodeMapToAudioBusMessage(id int64, kv []osc.Arg) osc.Message {
	args := append([]osc.Arg{osc.Int32(int32(id))}, kv...)
	return osc.Message{Address: "/n_mapa", Args: args}
}

func nodeMapToControlBusMessage(id int64, kv []osc.Arg) osc.Message {
	args := append([]osc.Arg{osc.Int32(int32(id))}, kv...)
	return osc.Message{Address: "/n_map", Args: args}
}

func controlBusSetMessage(kv []osc.Arg) osc.Message {
	return osc.Message{Address: "/c_set", Args: kv}
}
