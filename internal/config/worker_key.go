package config

type WorkerKeyStruct struct {
	PersistAttendanceRecordsQueue string
}

var WorkerKey = &WorkerKeyStruct{
	PersistAttendanceRecordsQueue: "persist_attendance_records_queue",
}
