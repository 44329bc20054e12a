package navstack

import (
	"strconv"
)

type homeKey struct{}

func (homeKey) Kind() string { return "home" }

type detailKey struct {
	ID int
}

func (detailKey) Kind() string { return "detail" }

type dialogKey struct {
	Message string
}

func (dialogKey) Kind() string { return "dialog" }

type recordingRenderer struct {
	calls []string
}

func (r *recordingRenderer) Mount(in Instruction)     { r.calls = append(r.calls, "mount:"+in.ID()) }
func (r *recordingRenderer) Unmount(in Instruction)   { r.calls = append(r.calls, "unmount:"+in.ID()) }
func (r *recordingRenderer) SetActive(in Instruction) { r.calls = append(r.calls, "active:"+in.ID()) }

func push(id string) Instruction {
	return Push(detailKey{ID: len(id)}, WithInstructionID(id))
}

func present(id string) Instruction {
	return Present(dialogKey{Message: id}, WithInstructionID(id))
}

func numbered(prefix string, n int) string {
	return prefix + strconv.Itoa(n)
}
