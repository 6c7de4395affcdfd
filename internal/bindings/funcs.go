//go:build !ios && !android && (amd64 || arm64)

package bindings

import (
	"fmt"
	"unsafe"

	"github.com/ebitengine/purego"
)

// gerrorC mirrors GError.
type gerrorC struct {
	domain  uint32
	code    int32
	message *byte
}

// GLib
var (
	gFree          func(p unsafe.Pointer)
	gErrorFree     func(err *gerrorC)
	gErrorNewLit   func(domain uint32, code int32, message string) *gerrorC
	gQuarkToString func(q uint32) string
	gQuarkFromStr  func(s string) uint32
	gTypeCheckIsA  func(instance uintptr, gtype uintptr) int32
)

// Core and objects
var (
	gstInitCheck       func(argc, argv unsafe.Pointer, err **gerrorC) int32
	gstDeinit          func()
	gstVersion         func(major, minor, micro, nano *uint32)
	gstObjectRef       func(obj uintptr) uintptr
	gstObjectUnref     func(obj uintptr)
	gstObjectRefSink   func(obj uintptr) uintptr
	gstObjectGetName   func(obj uintptr) unsafe.Pointer
	gstObjectGetType   func() uintptr
	gstElementGetType  func() uintptr
	gstBinGetType      func() uintptr
	gstPipelineGetType func() uintptr
	gstBusGetType      func() uintptr
)

// Messages
var (
	gstMiniObjectRef   func(obj uintptr) uintptr
	gstMiniObjectUnref func(obj uintptr)

	gstMessageGetSeqnum    func(msg uintptr) uint32
	gstMessageGetStructure func(msg uintptr) uintptr
	gstStructureGetName    func(s uintptr) string
	gstStructureFromString func(s string, end unsafe.Pointer) uintptr
	gstTagListFromString   func(s string) uintptr
	gstTagListToString     func(list uintptr) unsafe.Pointer

	gstMessageParseError        func(msg uintptr, err **gerrorC, debug *unsafe.Pointer)
	gstMessageParseWarning      func(msg uintptr, err **gerrorC, debug *unsafe.Pointer)
	gstMessageParseInfo         func(msg uintptr, err **gerrorC, debug *unsafe.Pointer)
	gstMessageParseStateChanged func(msg uintptr, old, current, pending *int32)
	gstMessageParseBuffering    func(msg uintptr, percent *int32)
	gstMessageParseSegmentStart func(msg uintptr, format *int32, position *int64)
	gstMessageParseSegmentDone  func(msg uintptr, format *int32, position *int64)
	gstMessageParseTag          func(msg uintptr, list *uintptr)
	gstMessageParseAsyncDone    func(msg uintptr, runningTime *uint64)

	gstMessageNewEOS             func(src uintptr) uintptr
	gstMessageNewError           func(src uintptr, err *gerrorC, debug *byte) uintptr
	gstMessageNewWarning         func(src uintptr, err *gerrorC, debug *byte) uintptr
	gstMessageNewInfo            func(src uintptr, err *gerrorC, debug *byte) uintptr
	gstMessageNewStateChanged    func(src uintptr, old, current, pending int32) uintptr
	gstMessageNewBuffering       func(src uintptr, percent int32) uintptr
	gstMessageNewDurationChanged func(src uintptr) uintptr
	gstMessageNewSegmentStart    func(src uintptr, format int32, position int64) uintptr
	gstMessageNewSegmentDone     func(src uintptr, format int32, position int64) uintptr
	gstMessageNewAsyncDone       func(src uintptr, runningTime uint64) uintptr
	gstMessageNewTag             func(src uintptr, list uintptr) uintptr
	gstMessageNewApplication     func(src uintptr, structure uintptr) uintptr
)

// Bus
var (
	gstBusSetSyncHandler func(bus uintptr, fn uintptr, userData uintptr, notify uintptr)
	gstBusPost           func(bus uintptr, msg uintptr) int32
	gstBusSetFlushing    func(bus uintptr, flushing int32)
	gstBusTimedPop       func(bus uintptr, timeout uint64) uintptr
)

// Elements
var (
	gstElementFactoryMake func(factory string, name *byte) uintptr
	gstPipelineNew        func(name *byte) uintptr
	gstBinNew             func(name *byte) uintptr
	gstParseLaunch        func(desc string, err **gerrorC) uintptr
	gstBinAdd             func(bin, element uintptr) int32
	gstBinGetByName       func(bin uintptr, name string) uintptr
	gstElementLink        func(src, dst uintptr) int32
	gstElementSetState    func(el uintptr, state int32) int32
	gstElementGetState    func(el uintptr, state, pending *int32, timeout uint64) int32
	gstElementGetBus      func(el uintptr) uintptr
	gstElementPostMessage func(el uintptr, msg uintptr) int32
	gstElementQueryPos    func(el uintptr, format int32, cur *int64) int32
	gstElementQueryDur    func(el uintptr, format int32, dur *int64) int32
)

// Debug logging
var (
	gstDebugSetDefaultThreshold func(level int32)
	gstDebugAddLogFunction      func(fn uintptr, userData uintptr, notify uintptr)
	gstDebugRemoveLogFunction   func(fn uintptr) uint32
	gstDebugCategoryGetName     func(cat uintptr) string
	gstDebugMessageGet          func(msg uintptr) string

	gstDebugLogDefault uintptr
)

// registerFunctions binds every symbol. purego panics on a missing symbol;
// that is turned into an error naming it.
func registerFunctions() (err error) {
	var sym string
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("gstgo: binding %s: %v", sym, r)
		}
	}()
	reg := func(fptr any, lib uintptr, name string) {
		sym = name
		purego.RegisterLibFunc(fptr, lib, name)
	}

	reg(&gFree, libGLib, "g_free")
	reg(&gErrorFree, libGLib, "g_error_free")
	reg(&gErrorNewLit, libGLib, "g_error_new_literal")
	reg(&gQuarkToString, libGLib, "g_quark_to_string")
	reg(&gQuarkFromStr, libGLib, "g_quark_from_string")
	reg(&gTypeCheckIsA, libGObject, "g_type_check_instance_is_a")

	reg(&gstInitCheck, libGst, "gst_init_check")
	reg(&gstDeinit, libGst, "gst_deinit")
	reg(&gstVersion, libGst, "gst_version")
	reg(&gstObjectRef, libGst, "gst_object_ref")
	reg(&gstObjectUnref, libGst, "gst_object_unref")
	reg(&gstObjectRefSink, libGst, "gst_object_ref_sink")
	reg(&gstObjectGetName, libGst, "gst_object_get_name")
	reg(&gstObjectGetType, libGst, "gst_object_get_type")
	reg(&gstElementGetType, libGst, "gst_element_get_type")
	reg(&gstBinGetType, libGst, "gst_bin_get_type")
	reg(&gstPipelineGetType, libGst, "gst_pipeline_get_type")
	reg(&gstBusGetType, libGst, "gst_bus_get_type")

	reg(&gstMiniObjectRef, libGst, "gst_mini_object_ref")
	reg(&gstMiniObjectUnref, libGst, "gst_mini_object_unref")
	reg(&gstMessageGetSeqnum, libGst, "gst_message_get_seqnum")
	reg(&gstMessageGetStructure, libGst, "gst_message_get_structure")
	reg(&gstStructureGetName, libGst, "gst_structure_get_name")
	reg(&gstStructureFromString, libGst, "gst_structure_from_string")
	reg(&gstTagListFromString, libGst, "gst_tag_list_new_from_string")
	reg(&gstTagListToString, libGst, "gst_tag_list_to_string")

	reg(&gstMessageParseError, libGst, "gst_message_parse_error")
	reg(&gstMessageParseWarning, libGst, "gst_message_parse_warning")
	reg(&gstMessageParseInfo, libGst, "gst_message_parse_info")
	reg(&gstMessageParseStateChanged, libGst, "gst_message_parse_state_changed")
	reg(&gstMessageParseBuffering, libGst, "gst_message_parse_buffering")
	reg(&gstMessageParseSegmentStart, libGst, "gst_message_parse_segment_start")
	reg(&gstMessageParseSegmentDone, libGst, "gst_message_parse_segment_done")
	reg(&gstMessageParseTag, libGst, "gst_message_parse_tag")
	reg(&gstMessageParseAsyncDone, libGst, "gst_message_parse_async_done")

	reg(&gstMessageNewEOS, libGst, "gst_message_new_eos")
	reg(&gstMessageNewError, libGst, "gst_message_new_error")
	reg(&gstMessageNewWarning, libGst, "gst_message_new_warning")
	reg(&gstMessageNewInfo, libGst, "gst_message_new_info")
	reg(&gstMessageNewStateChanged, libGst, "gst_message_new_state_changed")
	reg(&gstMessageNewBuffering, libGst, "gst_message_new_buffering")
	reg(&gstMessageNewDurationChanged, libGst, "gst_message_new_duration_changed")
	reg(&gstMessageNewSegmentStart, libGst, "gst_message_new_segment_start")
	reg(&gstMessageNewSegmentDone, libGst, "gst_message_new_segment_done")
	reg(&gstMessageNewAsyncDone, libGst, "gst_message_new_async_done")
	reg(&gstMessageNewTag, libGst, "gst_message_new_tag")
	reg(&gstMessageNewApplication, libGst, "gst_message_new_application")

	reg(&gstBusSetSyncHandler, libGst, "gst_bus_set_sync_handler")
	reg(&gstBusPost, libGst, "gst_bus_post")
	reg(&gstBusSetFlushing, libGst, "gst_bus_set_flushing")
	reg(&gstBusTimedPop, libGst, "gst_bus_timed_pop")

	reg(&gstElementFactoryMake, libGst, "gst_element_factory_make")
	reg(&gstPipelineNew, libGst, "gst_pipeline_new")
	reg(&gstBinNew, libGst, "gst_bin_new")
	reg(&gstParseLaunch, libGst, "gst_parse_launch")
	reg(&gstBinAdd, libGst, "gst_bin_add")
	reg(&gstBinGetByName, libGst, "gst_bin_get_by_name")
	reg(&gstElementLink, libGst, "gst_element_link")
	reg(&gstElementSetState, libGst, "gst_element_set_state")
	reg(&gstElementGetState, libGst, "gst_element_get_state")
	reg(&gstElementGetBus, libGst, "gst_element_get_bus")
	reg(&gstElementPostMessage, libGst, "gst_element_post_message")
	reg(&gstElementQueryPos, libGst, "gst_element_query_position")
	reg(&gstElementQueryDur, libGst, "gst_element_query_duration")

	reg(&gstDebugSetDefaultThreshold, libGst, "gst_debug_set_default_threshold")
	reg(&gstDebugAddLogFunction, libGst, "gst_debug_add_log_function")
	reg(&gstDebugRemoveLogFunction, libGst, "gst_debug_remove_log_function")
	reg(&gstDebugCategoryGetName, libGst, "gst_debug_category_get_name")
	reg(&gstDebugMessageGet, libGst, "gst_debug_message_get")

	sym = "gst_debug_log_default"
	gstDebugLogDefault, err = purego.Dlsym(libGst, sym)
	if err != nil {
		return fmt.Errorf("gstgo: binding %s: %w", sym, err)
	}
	return nil
}
