package mquic

// Version 当前版本
const Version = "v0.1.0"

// ProtocolVersion 线路格式版本
//
// 线路格式本身不携带版本号，两端必须使用相同的实现。
const ProtocolVersion = 1
